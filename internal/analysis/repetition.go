package analysis

import (
	"strings"

	"github.com/AthenaOS24/AthenaOS/internal/session"
)

// antiRepetitionStarters are openers the responder tends to fall back on.
// When one dominates recent assistant turns it is flagged so the prompt can
// steer the responder away from it.
var antiRepetitionStarters = []string{
	"Of course I'm here to help",
	"I'm here for you",
	"I understand how difficult",
	"That sounds really tough",
	"Thank you for sharing",
	"It's completely normal to",
	"I can imagine how",
	"You're not alone in",
}

// repetitionShare is the fraction of assistant turns a phrase must exceed,
// in addition to appearing more than once, before it counts as repetitive.
const repetitionShare = 0.3

// DetectRepetition returns the tracked phrases that dominate the assistant
// side of history, in tracking order.
func DetectRepetition(history []session.Message) []string {
	if len(history) == 0 {
		return nil
	}

	var responses []string
	for _, msg := range history {
		if msg.Role == session.RoleAssistant {
			responses = append(responses, strings.ToLower(msg.Content))
		}
	}
	if len(responses) == 0 {
		return nil
	}

	var repetitive []string
	for _, phrase := range antiRepetitionStarters {
		needle := strings.ToLower(phrase)
		count := 0
		for _, response := range responses {
			if strings.Contains(response, needle) {
				count++
			}
		}
		if count > 1 && float64(count) > float64(len(responses))*repetitionShare {
			repetitive = append(repetitive, phrase)
		}
	}
	return repetitive
}

// AntiRepetitionStarters returns a copy of the tracked opener phrases.
func AntiRepetitionStarters() []string {
	out := make([]string, len(antiRepetitionStarters))
	copy(out, antiRepetitionStarters)
	return out
}
