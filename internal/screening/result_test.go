package screening

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult_FullResponse(t *testing.T) {
	raw := `{
		"overall_score": 87.5,
		"resume_score": 90,
		"cover_letter_score": 82,
		"transcript_score": 88,
		"strengths": ["strong internships", "clear writing"],
		"weaknesses": ["limited leadership"],
		"reasoning": "Solid candidate overall.",
		"recommended_for_interview": true,
		"confidence_level": "high"
	}`

	result, err := ParseResult(raw)
	require.NoError(t, err)

	assert.Equal(t, 87.5, result.OverallScore)
	require.NotNil(t, result.ResumeScore)
	assert.Equal(t, 90.0, *result.ResumeScore)
	require.NotNil(t, result.CoverLetterScore)
	assert.Equal(t, 82.0, *result.CoverLetterScore)
	assert.Equal(t, []string{"strong internships", "clear writing"}, result.Strengths)
	assert.Equal(t, "Solid candidate overall.", result.Reasoning)
	assert.True(t, result.RecommendedForInterview)
	assert.Equal(t, "high", result.ConfidenceLevel)
}

func TestParseResult_MissingFieldsGetDefaults(t *testing.T) {
	result, err := ParseResult(`{}`)
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.OverallScore)
	assert.Nil(t, result.ResumeScore)
	assert.Nil(t, result.CoverLetterScore)
	assert.Nil(t, result.TranscriptScore)
	assert.Equal(t, []string{}, result.Strengths)
	assert.Equal(t, []string{}, result.Weaknesses)
	assert.Equal(t, "No reasoning provided", result.Reasoning)
	assert.False(t, result.RecommendedForInterview)
	assert.Equal(t, "medium", result.ConfidenceLevel)
}

func TestParseResult_NullSubScoresStayNil(t *testing.T) {
	raw := `{"overall_score": 75, "resume_score": 80, "cover_letter_score": null, "transcript_score": null}`

	result, err := ParseResult(raw)
	require.NoError(t, err)

	require.NotNil(t, result.ResumeScore)
	assert.Equal(t, 80.0, *result.ResumeScore)
	assert.Nil(t, result.CoverLetterScore)
	assert.Nil(t, result.TranscriptScore)
}

func TestParseResult_ClampsOutOfRangeScores(t *testing.T) {
	raw := `{"overall_score": 150, "resume_score": -20, "transcript_score": 100.5}`

	result, err := ParseResult(raw)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.OverallScore)
	require.NotNil(t, result.ResumeScore)
	assert.Equal(t, 0.0, *result.ResumeScore)
	require.NotNil(t, result.TranscriptScore)
	assert.Equal(t, 100.0, *result.TranscriptScore)
}

func TestParseResult_MalformedJSON(t *testing.T) {
	_, err := ParseResult(`{"overall_score": 75`)
	assert.Error(t, err)
}

func TestParseResult_WrongFieldType(t *testing.T) {
	_, err := ParseResult(`{"overall_score": "eighty-five"}`)
	assert.Error(t, err)
}

func TestParseResult_InvalidConfidenceEnum(t *testing.T) {
	_, err := ParseResult(`{"confidence_level": "certain"}`)
	assert.Error(t, err)
}

func TestDegradedResult(t *testing.T) {
	result := DegradedResult(errors.New("model timeout"))

	assert.Equal(t, 30.0, result.OverallScore)
	require.NotNil(t, result.ResumeScore)
	assert.Equal(t, 30.0, *result.ResumeScore)
	require.NotNil(t, result.CoverLetterScore)
	assert.Equal(t, 30.0, *result.CoverLetterScore)
	require.NotNil(t, result.TranscriptScore)
	assert.Equal(t, 30.0, *result.TranscriptScore)
	assert.Equal(t, []string{"Unable to analyze"}, result.Strengths)
	assert.Equal(t, []string{"Screening failed"}, result.Weaknesses)
	assert.Contains(t, result.Reasoning, "model timeout")
	assert.False(t, result.RecommendedForInterview)
	assert.Equal(t, "low", result.ConfidenceLevel)
}
