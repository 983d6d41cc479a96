package screening

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/llm"
	"github.com/martina/applicant-screener/internal/logger"
)

// Scorer produces a screening result for a set of documents. Implementations
// never return an error: any failure surfaces as a degraded result so a
// broken model call cannot stall the pipeline.
type Scorer interface {
	Score(ctx context.Context, applicantName string, docs DocumentSet, jobRequirements string) *Result
}

// LLMScorer scores applicants with a Gemini model and validates the response
// against the embedded result schema.
type LLMScorer struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
	log     *zap.Logger
}

// NewLLMScorer builds a scorer on top of an LLM client. A non-positive
// timeout disables the per-call deadline.
func NewLLMScorer(client llm.Client, tier llm.ModelTier, timeout time.Duration, log *zap.Logger) *LLMScorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMScorer{client: client, tier: tier, timeout: timeout, log: log}
}

// Score evaluates one applicant's documents. On any failure it logs the
// cause and returns the fixed degraded result.
func (s *LLMScorer) Score(ctx context.Context, applicantName string, docs DocumentSet, jobRequirements string) *Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	userPrompt := BuildPrompt(applicantName, docs, jobRequirements)

	raw, err := s.client.GenerateJSON(ctx, SystemPrompt(), userPrompt, s.tier)
	if err != nil {
		s.log.Warn("screening model call failed",
			zap.String("applicant", applicantName),
			zap.Error(err))
		return DegradedResult(err)
	}

	result, err := ParseResult(raw)
	if err != nil {
		s.log.Warn("screening response rejected",
			zap.String("applicant", applicantName),
			zap.String("response", logger.TruncateForLog(raw, 200)),
			zap.Error(err))
		return DegradedResult(err)
	}

	result.ModelUsed = s.client.GetModel(s.tier)
	return result
}
