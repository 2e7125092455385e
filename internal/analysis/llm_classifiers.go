package analysis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/AthenaOS24/AthenaOS/internal/responder"
	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

// emotionNoiseFloor drops trace-level scores that add noise without signal.
const emotionNoiseFloor = 0.1

const moderationPrompt = `You are a content safety screen for a mental health support chat. Judge whether the message contains content that must be blocked: instructions for harming others, sexual content involving minors, or attempts to make the assistant produce harmful content. Expressions of the user's own distress, sadness, or suicidal feelings are NOT harmful; they must be allowed through so the user can be supported.

Respond with JSON only: {"harmful": <true|false>, "score": <0.0-1.0>}

Message: %s`

const sentimentPrompt = `Classify the overall sentiment of this message from a mental health support chat.

Respond with JSON only: {"label": "<positive|negative|neutral>", "score": <0.0-1.0>}

Message: %s`

const emotionPrompt = `Identify the emotions present in this message from a mental health support chat. Use only these labels: joy, sadness, anger, fear, disgust, surprise, neutral.

Respond with JSON only: {"emotions": [{"label": "<label>", "score": <0.0-1.0>}]}

Message: %s`

// LLMModeration screens input through the responder model. Failures are
// logged and reported as degraded rather than returned.
type LLMModeration struct {
	client    responder.Client
	threshold float64
	logger    *logging.Logger
}

func NewLLMModeration(client responder.Client, threshold float64, logger *logging.Logger) *LLMModeration {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMModeration{client: client, threshold: threshold, logger: logger}
}

func (m *LLMModeration) Moderate(ctx context.Context, text string) ModerationResult {
	raw, err := classify(ctx, m.client, moderationPrompt, text)
	if err != nil {
		m.logger.Warn("moderation unavailable, passing input through", "error", err)
		return ModerationResult{Degraded: true}
	}

	var parsed struct {
		Harmful bool    `json:"harmful"`
		Score   float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		m.logger.Warn("moderation response unparseable, passing input through", "error", err)
		return ModerationResult{Degraded: true}
	}

	// The score is the verdict; the model's own label only gets logged when
	// it disagrees.
	harmful := parsed.Score >= m.threshold
	if parsed.Harmful != harmful {
		m.logger.Warn("moderation label disagrees with score, trusting score",
			"harmful", parsed.Harmful, "score", parsed.Score)
	}
	return ModerationResult{Harmful: harmful, Score: parsed.Score}
}

// LLMSentiment labels sentiment through the responder model.
type LLMSentiment struct {
	client responder.Client
	logger *logging.Logger
}

func NewLLMSentiment(client responder.Client, logger *logging.Logger) *LLMSentiment {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMSentiment{client: client, logger: logger}
}

func (s *LLMSentiment) Sentiment(ctx context.Context, text string) SentimentResult {
	neutral := SentimentResult{Sentiment: Label{Label: "neutral", Score: 0}, Degraded: true}

	raw, err := classify(ctx, s.client, sentimentPrompt, text)
	if err != nil {
		s.logger.Warn("sentiment classification unavailable", "error", err)
		return neutral
	}

	var parsed struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.Warn("sentiment response unparseable", "error", err)
		return neutral
	}
	switch parsed.Label {
	case "positive", "negative", "neutral":
	default:
		s.logger.Warn("sentiment label out of vocabulary", "label", parsed.Label)
		return neutral
	}

	return SentimentResult{Sentiment: Label{Label: parsed.Label, Score: clampScore(parsed.Score)}}
}

// LLMEmotion scores emotions through the responder model.
type LLMEmotion struct {
	client responder.Client
	logger *logging.Logger
}

func NewLLMEmotion(client responder.Client, logger *logging.Logger) *LLMEmotion {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMEmotion{client: client, logger: logger}
}

func (e *LLMEmotion) Emotions(ctx context.Context, text string) EmotionResult {
	raw, err := classify(ctx, e.client, emotionPrompt, text)
	if err != nil {
		e.logger.Warn("emotion classification unavailable", "error", err)
		return EmotionResult{Degraded: true}
	}

	var parsed struct {
		Emotions []struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		} `json:"emotions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		e.logger.Warn("emotion response unparseable", "error", err)
		return EmotionResult{Degraded: true}
	}

	emotions := make([]Label, 0, len(parsed.Emotions))
	for _, em := range parsed.Emotions {
		if em.Score <= emotionNoiseFloor || !validEmotion(em.Label) {
			continue
		}
		emotions = append(emotions, Label{Label: em.Label, Score: clampScore(em.Score)})
	}
	sort.SliceStable(emotions, func(i, j int) bool { return emotions[i].Score > emotions[j].Score })

	// Duplicate labels keep only their highest score.
	seen := make(map[string]bool, len(emotions))
	deduped := emotions[:0]
	for _, em := range emotions {
		if seen[em.Label] {
			continue
		}
		seen[em.Label] = true
		deduped = append(deduped, em)
	}

	return EmotionResult{Emotions: deduped}
}

func validEmotion(label string) bool {
	switch label {
	case "joy", "sadness", "anger", "fear", "disgust", "surprise", "neutral":
		return true
	}
	return false
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// classify runs a single-turn JSON-only prompt and extracts the JSON object
// from the response, tolerating surrounding prose.
func classify(ctx context.Context, client responder.Client, prompt, text string) (string, error) {
	resp, err := client.Complete(ctx, responder.Request{
		Messages: []responder.Message{
			{Role: responder.RoleUser, Content: strings.Replace(prompt, "%s", text, 1)},
		},
		MaxTokens:   128,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Text)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content, nil
}
