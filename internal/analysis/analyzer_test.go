package analysis

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AthenaOS24/AthenaOS/internal/session"
)

type stubModeration struct {
	result ModerationResult
}

func (s stubModeration) Moderate(ctx context.Context, text string) ModerationResult {
	return s.result
}

type stubSentiment struct {
	result SentimentResult
}

func (s stubSentiment) Sentiment(ctx context.Context, text string) SentimentResult {
	return s.result
}

type stubEmotion struct {
	result EmotionResult
}

func (s stubEmotion) Emotions(ctx context.Context, text string) EmotionResult {
	return s.result
}

func newTestAnalyzer(mod ModerationResult, sent SentimentResult, emo EmotionResult) *Analyzer {
	return NewAnalyzer(AnalyzerOptions{
		Moderation:    stubModeration{result: mod},
		Sentiment:     stubSentiment{result: sent},
		Emotion:       stubEmotion{result: emo},
		Interventions: NewInterventionSelector(rand.NewSource(1)),
	})
}

func cleanSignals() (ModerationResult, SentimentResult, EmotionResult) {
	return ModerationResult{Score: 0.02},
		SentimentResult{Sentiment: Label{Label: "negative", Score: 0.8}},
		EmotionResult{Emotions: []Label{{Label: "sadness", Score: 0.75}}}
}

func TestAnalyzeHopelessAndAtFault(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	result, err := a.Analyze(context.Background(), "I feel hopeless and it's always my fault", nil)
	require.NoError(t, err)

	assert.Equal(t, UrgencyConcern, result.UrgencyLevel)
	assert.Contains(t, result.CBT.Patterns, "catastrophizing")
	assert.Contains(t, result.CBT.Patterns, "personalization")
	assert.NotEmpty(t, result.CBT.Intervention)
	assert.Equal(t, "concern", result.Sentiment.Label)
	assert.Len(t, result.Resources, 3)
	assert.False(t, result.IsHarmful)
}

func TestAnalyzeCrisisInput(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	result, err := a.Analyze(context.Background(), "I can't go on anymore", nil)
	require.NoError(t, err)

	assert.Equal(t, UrgencyCrisis, result.UrgencyLevel)
	assert.Equal(t, "crisis", result.Sentiment.Label)
	assert.Len(t, result.Resources, 2)
}

func TestAnalyzeNonEnglishInput(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	result, err := a.Analyze(context.Background(), "我感到非常难过", nil)
	require.NoError(t, err)
	assert.Equal(t, "我感到非常难过", result.SanitizedInput)
}

func TestAnalyzeOrdinaryInput(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	result, err := a.Analyze(context.Background(), "I went hiking this weekend and it helped a bit", nil)
	require.NoError(t, err)

	assert.Equal(t, UrgencyNone, result.UrgencyLevel)
	assert.Equal(t, "negative", result.Sentiment.Label)
	assert.Empty(t, result.Resources)
	assert.Equal(t, []Label{{Label: "sadness", Score: 0.75}}, result.Emotions)
}

func TestAnalyzeEmptyAfterSanitization(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	_, err := a.Analyze(context.Background(), "   <b></b>  ", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.True(t, IsInputRejected(err))
}

func TestAnalyzeHarmfulInputGated(t *testing.T) {
	_, sent, emo := cleanSignals()
	a := newTestAnalyzer(ModerationResult{Harmful: true, Score: 0.93}, sent, emo)

	result, err := a.Analyze(context.Background(), "some harmful text", nil)
	assert.ErrorIs(t, err, ErrHarmfulInput)
	assert.True(t, IsInputRejected(err))
	assert.True(t, result.IsHarmful)
}

func TestAnalyzeDegradedClassifiersHoldAtConcern(t *testing.T) {
	a := newTestAnalyzer(
		ModerationResult{Degraded: true},
		SentimentResult{Sentiment: Label{Label: "neutral"}, Degraded: true},
		EmotionResult{Degraded: true},
	)

	result, err := a.Analyze(context.Background(), "just checking in about my day", nil)
	require.NoError(t, err)

	assert.Equal(t, UrgencyConcern, result.UrgencyLevel)
	assert.Equal(t, "concern", result.Sentiment.Label)
	assert.NotEmpty(t, result.Resources)
	assert.True(t, result.Degraded("moderation"))
	assert.True(t, result.Degraded("sentiment"))
	assert.True(t, result.Degraded("emotion"))
}

func TestAnalyzeCrisisOutranksDegradedHold(t *testing.T) {
	a := newTestAnalyzer(
		ModerationResult{Degraded: true},
		SentimentResult{Sentiment: Label{Label: "neutral"}, Degraded: true},
		EmotionResult{Degraded: true},
	)

	result, err := a.Analyze(context.Background(), "i want to end my life", nil)
	require.NoError(t, err)
	assert.Equal(t, UrgencyCrisis, result.UrgencyLevel)
	assert.Len(t, result.Resources, 2)
}

func TestAnalyzeRepetitionFromHistory(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	history := []session.Message{
		{Role: session.RoleAssistant, Content: "I'm here for you, take your time."},
		{Role: session.RoleUser, Content: "ok"},
		{Role: session.RoleAssistant, Content: "I'm here for you whenever you're ready."},
	}
	result, err := a.Analyze(context.Background(), "still thinking about it", nil)
	require.NoError(t, err)
	assert.Empty(t, result.CBT.RepetitivePatterns)

	result, err = a.Analyze(context.Background(), "still thinking about it", history)
	require.NoError(t, err)
	assert.Equal(t, []string{"I'm here for you"}, result.CBT.RepetitivePatterns)
}

func TestAnalyzeSanitizedInputCarried(t *testing.T) {
	mod, sent, emo := cleanSignals()
	a := newTestAnalyzer(mod, sent, emo)

	result, err := a.Analyze(context.Background(), "<b>rough day</b> at work", nil)
	require.NoError(t, err)
	assert.Equal(t, "rough day at work", result.SanitizedInput)
}
