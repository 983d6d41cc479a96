package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/llm"
)

type fakeLLM struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, systemPrompt, userPrompt string, _ llm.ModelTier) (string, error) {
	f.lastSystem = systemPrompt
	f.lastPrompt = userPrompt
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

func TestLLMScorer_ValidResponse(t *testing.T) {
	client := &fakeLLM{response: `{"overall_score": 77, "recommended_for_interview": true}`}
	scorer := NewLLMScorer(client, llm.TierStandard, time.Minute, zap.NewNop())

	result := scorer.Score(context.Background(), "Taylor", DocumentSet{Resume: "resume"}, "")

	require.NotNil(t, result)
	assert.Equal(t, 77.0, result.OverallScore)
	assert.True(t, result.RecommendedForInterview)
	assert.Equal(t, "fake-model", result.ModelUsed)
	assert.Contains(t, client.lastSystem, "expert HR professional")
	assert.Contains(t, client.lastPrompt, "resume")
}

func TestLLMScorer_ModelErrorYieldsDegradedResult(t *testing.T) {
	client := &fakeLLM{err: errors.New("quota exceeded")}
	scorer := NewLLMScorer(client, llm.TierStandard, time.Minute, zap.NewNop())

	result := scorer.Score(context.Background(), "Taylor", DocumentSet{Resume: "resume"}, "")

	require.NotNil(t, result)
	assert.Equal(t, 30.0, result.OverallScore)
	assert.Contains(t, result.Reasoning, "quota exceeded")
}

func TestLLMScorer_InvalidJSONYieldsDegradedResult(t *testing.T) {
	client := &fakeLLM{response: "I cannot evaluate this candidate."}
	scorer := NewLLMScorer(client, llm.TierStandard, 0, zap.NewNop())

	result := scorer.Score(context.Background(), "Taylor", DocumentSet{Resume: "resume"}, "")

	require.NotNil(t, result)
	assert.Equal(t, 30.0, result.OverallScore)
	assert.Equal(t, []string{"Unable to analyze"}, result.Strengths)
}
