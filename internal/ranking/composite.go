package ranking

import "math"

// Weights holds the per-document contribution to a composite score.
type Weights struct {
	Resume      float64
	CoverLetter float64
	Transcript  float64
}

// DefaultWeights weights the resume heaviest, matching the screening rubric.
func DefaultWeights() Weights {
	return Weights{Resume: 0.40, CoverLetter: 0.30, Transcript: 0.30}
}

// CompositeScore computes a weighted average over the sub-scores that are
// present. The divisor is the sum of the weights actually used, so an
// applicant missing a document is not penalized by an implicit zero. Returns
// 0.0 when no sub-score is present. Result is rounded to 2 decimal places.
func CompositeScore(resume, coverLetter, transcript *float64, weights Weights) float64 {
	var sum, weightSum float64

	if resume != nil {
		sum += *resume * weights.Resume
		weightSum += weights.Resume
	}
	if coverLetter != nil {
		sum += *coverLetter * weights.CoverLetter
		weightSum += weights.CoverLetter
	}
	if transcript != nil {
		sum += *transcript * weights.Transcript
		weightSum += weights.Transcript
	}

	if weightSum == 0 {
		return 0.0
	}

	return math.Round(sum/weightSum*100) / 100
}
