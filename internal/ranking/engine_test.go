package ranking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
)

// fakeStore implements Store in memory.
type fakeStore struct {
	scored     []db.ScoredApplicant
	applied    []db.RankPlacement
	applyErr   error
	performers []db.ApplicantDetail
}

func (f *fakeStore) ListScoredForRanking(_ context.Context) ([]db.ScoredApplicant, error) {
	return f.scored, nil
}

func (f *fakeStore) ApplyPlacements(_ context.Context, placements []db.RankPlacement) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = placements
	return nil
}

func (f *fakeStore) CountScreened(_ context.Context) (int, error) {
	return len(f.scored), nil
}

func (f *fakeStore) TopPerformers(_ context.Context, minScore float64, limit int) ([]db.ApplicantDetail, error) {
	out := f.performers
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListOverallScores(_ context.Context) ([]float64, error) {
	scores := make([]float64, len(f.scored))
	for i, s := range f.scored {
		scores[i] = s.OverallScore
	}
	return scores, nil
}

func scoredAt(score float64, at time.Time) db.ScoredApplicant {
	return db.ScoredApplicant{ApplicantID: uuid.New(), OverallScore: score, ScreenedAt: at}
}

func TestAssignPlacements_DenseRankPermutation(t *testing.T) {
	base := time.Now()
	scored := []db.ScoredApplicant{
		scoredAt(55, base),
		scoredAt(91, base),
		scoredAt(78, base),
		scoredAt(62, base),
		scoredAt(84, base),
	}

	placements := AssignPlacements(scored)
	require.Len(t, placements, 5)

	// Ranks form the permutation {1..N} with no gaps or repeats
	seen := make(map[int]bool)
	for _, p := range placements {
		assert.GreaterOrEqual(t, p.Rank, 1)
		assert.LessOrEqual(t, p.Rank, 5)
		assert.False(t, seen[p.Rank], "rank %d assigned twice", p.Rank)
		seen[p.Rank] = true
	}

	// Percentile formula holds for every row
	n := float64(len(placements))
	for _, p := range placements {
		assert.InDelta(t, (n-float64(p.Rank))/n*100, p.Percentile, 1e-9)
	}

	// Best score gets rank 1
	assert.Equal(t, scored[1].ApplicantID, placements[0].ApplicantID)
	assert.Equal(t, 1, placements[0].Rank)
	assert.InDelta(t, 80.0, placements[0].Percentile, 1e-9)
}

func TestAssignPlacements_TieBreakByScreenedAt(t *testing.T) {
	base := time.Now()
	earlier := scoredAt(75, base.Add(-time.Hour))
	later := scoredAt(75, base)

	// Input order should not matter
	placements := AssignPlacements([]db.ScoredApplicant{later, earlier})
	require.Len(t, placements, 2)

	assert.Equal(t, earlier.ApplicantID, placements[0].ApplicantID)
	assert.Equal(t, 1, placements[0].Rank)
	assert.Equal(t, later.ApplicantID, placements[1].ApplicantID)
	assert.Equal(t, 2, placements[1].Rank)
}

func TestAssignPlacements_SingleApplicant(t *testing.T) {
	placements := AssignPlacements([]db.ScoredApplicant{scoredAt(90, time.Now())})
	require.Len(t, placements, 1)
	assert.Equal(t, 1, placements[0].Rank)
	assert.Equal(t, 0.0, placements[0].Percentile)
}

func TestRecomputeRankings(t *testing.T) {
	base := time.Now()
	store := &fakeStore{scored: []db.ScoredApplicant{
		scoredAt(40, base),
		scoredAt(95, base),
		scoredAt(70, base),
	}}
	engine := NewEngine(store, zap.NewNop())

	require.NoError(t, engine.RecomputeRankings(context.Background()))
	require.Len(t, store.applied, 3)
	assert.Equal(t, 1, store.applied[0].Rank)
	assert.Equal(t, 3, store.applied[2].Rank)
}

func TestRecomputeRankings_EmptyPopulation(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store, zap.NewNop())

	require.NoError(t, engine.RecomputeRankings(context.Background()))
	assert.Empty(t, store.applied)
}

func TestRecomputeRankings_WriteFailure(t *testing.T) {
	store := &fakeStore{
		scored:   []db.ScoredApplicant{scoredAt(80, time.Now())},
		applyErr: errors.New("connection reset"),
	}
	engine := NewEngine(store, zap.NewNop())

	err := engine.RecomputeRankings(context.Background())
	assert.Error(t, err)
}

// interleavingStore snapshots the population at the start of each list call
// and can hold the first reader open while the population changes underneath
// it, so two recomputes can be forced to race.
type interleavingStore struct {
	mu        sync.Mutex
	scored    map[uuid.UUID]db.ScoredApplicant
	ranks     map[uuid.UUID]int
	listCalls int

	firstListEntered chan struct{}
	releaseFirstList chan struct{}
}

func (f *interleavingStore) ListScoredForRanking(_ context.Context) ([]db.ScoredApplicant, error) {
	f.mu.Lock()
	f.listCalls++
	first := f.listCalls == 1
	snapshot := make([]db.ScoredApplicant, 0, len(f.scored))
	for _, s := range f.scored {
		snapshot = append(snapshot, s)
	}
	f.mu.Unlock()

	if first {
		close(f.firstListEntered)
		<-f.releaseFirstList
	}
	return snapshot, nil
}

func (f *interleavingStore) ApplyPlacements(_ context.Context, placements []db.RankPlacement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range placements {
		f.ranks[p.ApplicantID] = p.Rank
	}
	return nil
}

func (f *interleavingStore) CountScreened(_ context.Context) (int, error) { return len(f.scored), nil }

func (f *interleavingStore) TopPerformers(_ context.Context, _ float64, _ int) ([]db.ApplicantDetail, error) {
	return nil, nil
}

func (f *interleavingStore) ListOverallScores(_ context.Context) ([]float64, error) {
	return nil, nil
}

func (f *interleavingStore) setScored(s db.ScoredApplicant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scored[s.ApplicantID] = s
}

func (f *interleavingStore) rankOf(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ranks[id]
}

func TestRecomputeRankings_ConcurrentRecomputesStaySerialized(t *testing.T) {
	base := time.Now()
	a := db.ScoredApplicant{ApplicantID: uuid.New(), OverallScore: 90, ScreenedAt: base.Add(-time.Minute)}
	b := db.ScoredApplicant{ApplicantID: uuid.New(), OverallScore: 80, ScreenedAt: base}

	store := &interleavingStore{
		scored:           map[uuid.UUID]db.ScoredApplicant{a.ApplicantID: a, b.ApplicantID: b},
		ranks:            map[uuid.UUID]int{},
		firstListEntered: make(chan struct{}),
		releaseFirstList: make(chan struct{}),
	}
	engine := NewEngine(store, zap.NewNop())

	errs := make(chan error, 2)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		errs <- engine.RecomputeRankings(context.Background())
	}()
	<-store.firstListEntered

	// B is rescreened with a better score while the first recompute is
	// holding a snapshot of the old population.
	b.OverallScore = 95
	b.ScreenedAt = base.Add(time.Minute)
	store.setScored(b)

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		errs <- engine.RecomputeRankings(context.Background())
	}()

	// Give the second recompute the chance to commit first if nothing
	// serializes it, then let the stale one finish.
	select {
	case <-secondDone:
	case <-time.After(100 * time.Millisecond):
	}
	close(store.releaseFirstList)
	<-firstDone
	<-secondDone

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	// The last committed ranking must reflect the fresh population: B now
	// outranks A. A stale snapshot committing last would leave A at rank 1
	// and the old B rank alongside it.
	assert.Equal(t, 1, store.rankOf(b.ApplicantID))
	assert.Equal(t, 2, store.rankOf(a.ApplicantID))
}

func TestTopCount(t *testing.T) {
	assert.Equal(t, 0, TopCount(0, 15))
	assert.Equal(t, 1, TopCount(3, 15))  // floor(0.45) = 0, bumped to 1
	assert.Equal(t, 1, TopCount(10, 15)) // floor(1.5) = 1
	assert.Equal(t, 15, TopCount(100, 15))
	assert.Equal(t, 3, TopCount(7, 50)) // floor(3.5), not rounded up
}

func TestTopPerformers(t *testing.T) {
	base := time.Now()

	t.Run("empty population", func(t *testing.T) {
		engine := NewEngine(&fakeStore{}, zap.NewNop())
		got, total, err := engine.TopPerformers(context.Background(), 15, 60)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 0, total)
	})

	t.Run("three qualifying applicants yield one", func(t *testing.T) {
		store := &fakeStore{
			scored: []db.ScoredApplicant{
				scoredAt(90, base), scoredAt(85, base), scoredAt(80, base),
			},
			performers: []db.ApplicantDetail{{}, {}, {}},
		}
		engine := NewEngine(store, zap.NewNop())

		got, total, err := engine.TopPerformers(context.Background(), 15, 60)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 3, total)
	})
}

func TestDistributionBins(t *testing.T) {
	scores := []float64{100, 95, 90, 89.99, 80, 79.5, 70, 69, 60, 59.99, 0}

	bins := DistributionBins(scores)

	assert.Equal(t, 3, bins[BandExcellent]) // 100, 95, 90
	assert.Equal(t, 2, bins[BandVeryGood])  // 89.99, 80
	assert.Equal(t, 2, bins[BandGood])      // 79.5, 70
	assert.Equal(t, 2, bins[BandFair])      // 69, 60
	assert.Equal(t, 2, bins[BandBelow])     // 59.99, 0
}

func TestDistributionBins_Empty(t *testing.T) {
	bins := DistributionBins(nil)
	for band, count := range bins {
		assert.Equal(t, 0, count, "band %s", band)
	}
	assert.Len(t, bins, 5)
}
