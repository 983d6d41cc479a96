// Package ranking maintains global rank and percentile over the screened
// applicant population.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
)

// Store is the persistence surface the engine needs.
type Store interface {
	ListScoredForRanking(ctx context.Context) ([]db.ScoredApplicant, error)
	ApplyPlacements(ctx context.Context, placements []db.RankPlacement) error
	CountScreened(ctx context.Context) (int, error)
	TopPerformers(ctx context.Context, minScore float64, limit int) ([]db.ApplicantDetail, error)
	ListOverallScores(ctx context.Context) ([]float64, error)
}

// Engine recomputes rankings and answers population-level score queries.
type Engine struct {
	store Store
	log   *zap.Logger

	// recomputeMu serializes read-then-rewrite recomputes. Screenings for
	// different applicants run concurrently, and without the lock a recompute
	// holding a stale population snapshot could commit after a fresher one,
	// leaving a mix of old and new ranks.
	recomputeMu sync.Mutex
}

// NewEngine creates a ranking engine.
func NewEngine(store Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// RecomputeRankings reassigns rank and percentile across the entire screened
// population. It is a full recompute: correct under any insert, update, or
// delete, and cheap at human-scale applicant counts. The write-back runs in
// one transaction so readers never observe a partial ranking, and the whole
// read-then-rewrite is held under a lock so concurrent recomputes cannot
// commit stale snapshots over fresh ones.
func (e *Engine) RecomputeRankings(ctx context.Context) error {
	e.recomputeMu.Lock()
	defer e.recomputeMu.Unlock()

	scored, err := e.store.ListScoredForRanking(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scored applicants: %w", err)
	}

	if len(scored) == 0 {
		e.log.Info("no screening results to rank")
		return nil
	}

	placements := AssignPlacements(scored)
	if err := e.store.ApplyPlacements(ctx, placements); err != nil {
		return fmt.Errorf("failed to apply rankings: %w", err)
	}

	e.log.Info("updated rankings", zap.Int("applicants", len(placements)))
	return nil
}

// AssignPlacements computes dense ranks 1..N by overall score descending,
// with screened_at ascending as the tie-break so ranks are reproducible.
// Percentile is the share of the population the applicant outperforms.
func AssignPlacements(scored []db.ScoredApplicant) []db.RankPlacement {
	ordered := make([]db.ScoredApplicant, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].OverallScore != ordered[j].OverallScore {
			return ordered[i].OverallScore > ordered[j].OverallScore
		}
		return ordered[i].ScreenedAt.Before(ordered[j].ScreenedAt)
	})

	n := len(ordered)
	placements := make([]db.RankPlacement, n)
	for i, s := range ordered {
		rank := i + 1
		placements[i] = db.RankPlacement{
			ApplicantID: s.ApplicantID,
			Rank:        rank,
			Percentile:  float64(n-rank) / float64(n) * 100,
		}
	}
	return placements
}

// TopCount returns how many applicants a top-percentage query yields:
// floor(total * percentage/100), but never less than one for a non-empty
// population.
func TopCount(total int, percentage float64) int {
	if total == 0 {
		return 0
	}
	count := int(math.Floor(float64(total) * percentage / 100))
	if count < 1 {
		return 1
	}
	return count
}

// TopPerformers returns applicants scoring at least minScore, best first,
// truncated to the top percentage of the screened population. The second
// return value is the total screened count.
func (e *Engine) TopPerformers(ctx context.Context, percentage, minScore float64) ([]db.ApplicantDetail, int, error) {
	total, err := e.store.CountScreened(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count screened applicants: %w", err)
	}
	if total == 0 {
		return []db.ApplicantDetail{}, 0, nil
	}

	performers, err := e.store.TopPerformers(ctx, minScore, TopCount(total, percentage))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch top performers: %w", err)
	}
	return performers, total, nil
}

// ScoreDistribution returns counts of screened applicants per score band.
func (e *Engine) ScoreDistribution(ctx context.Context) (map[string]int, error) {
	scores, err := e.store.ListOverallScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return DistributionBins(scores), nil
}

// Distribution band labels.
const (
	BandExcellent = "90-100 (Excellent)"
	BandVeryGood  = "80-89 (Very Good)"
	BandGood      = "70-79 (Good)"
	BandFair      = "60-69 (Fair)"
	BandBelow     = "0-59 (Below Threshold)"
)

// DistributionBins partitions scores into fixed bands. Bands are
// inclusive-lower/exclusive-upper except the top band, which includes 100.
func DistributionBins(scores []float64) map[string]int {
	bins := map[string]int{
		BandExcellent: 0,
		BandVeryGood:  0,
		BandGood:      0,
		BandFair:      0,
		BandBelow:     0,
	}

	for _, s := range scores {
		switch {
		case s >= 90:
			bins[BandExcellent]++
		case s >= 80:
			bins[BandVeryGood]++
		case s >= 70:
			bins[BandGood]++
		case s >= 60:
			bins[BandFair]++
		default:
			bins[BandBelow]++
		}
	}
	return bins
}
