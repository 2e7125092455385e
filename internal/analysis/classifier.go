package analysis

import "context"

// ModerationResult reports whether input should be blocked outright.
// Degraded is set when the underlying classifier failed and the zero verdict
// is a default rather than a judgment.
type ModerationResult struct {
	Harmful  bool
	Score    float64
	Degraded bool
}

// SentimentResult carries a single dominant sentiment label with confidence.
type SentimentResult struct {
	Sentiment Label
	Degraded  bool
}

// EmotionResult carries detected emotions sorted by descending score. Scores
// below the caller's noise floor are already filtered out.
type EmotionResult struct {
	Emotions []Label
	Degraded bool
}

// ModerationClassifier screens input for content that must not reach the
// conversation pipeline. Implementations never return an error; failures
// surface as a degraded, non-harmful result.
type ModerationClassifier interface {
	Moderate(ctx context.Context, text string) ModerationResult
}

// SentimentClassifier labels the overall sentiment of a message.
type SentimentClassifier interface {
	Sentiment(ctx context.Context, text string) SentimentResult
}

// EmotionClassifier scores the emotions present in a message.
type EmotionClassifier interface {
	Emotions(ctx context.Context, text string) EmotionResult
}
