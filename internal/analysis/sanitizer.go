package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxInputLength is the cap applied after cleaning; longer input is cut and
// marked.
const MaxInputLength = 1000

// TruncationMarker is appended when input is cut at MaxInputLength.
const TruncationMarker = "... [truncated]"

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	markupRe      = regexp.MustCompile(`<[^>]+>`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	cardRe  = regexp.MustCompile(`\b\d(?:[ \-]?\d){12,15}\b`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// Letters and digits in any script, whitespace, a short punctuation
	// allow-list, and the brackets used by redaction placeholders and the
	// truncation marker.
	unsafeCharRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?'"\-\[\]]`)
)

// Sanitizer cleans raw user input before any analysis or generation sees it.
type Sanitizer struct {
	redactPII bool
}

// NewSanitizer creates a sanitizer. When redactPII is set, email, phone,
// card-like, and SSN-like substrings are replaced with placeholder tokens.
func NewSanitizer(redactPII bool) *Sanitizer {
	return &Sanitizer{redactPII: redactPII}
}

// Sanitize strips markup and unsafe characters, optionally redacts PII, trims
// whitespace, and truncates to MaxInputLength. The operation is idempotent.
func (s *Sanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}

	text = scriptBlockRe.ReplaceAllString(text, "")
	text = markupRe.ReplaceAllString(text, "")

	if s.redactPII {
		text = ssnRe.ReplaceAllString(text, "[SSN]")
		text = cardRe.ReplaceAllString(text, "[CARD]")
		text = emailRe.ReplaceAllString(text, "[EMAIL]")
		text = phoneRe.ReplaceAllString(text, "[PHONE]")
	}

	text = unsafeCharRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	// Already-truncated text is left alone so the marker is never split.
	if strings.HasSuffix(text, TruncationMarker) && utf8.RuneCountInString(text) <= MaxInputLength+len(TruncationMarker) {
		return text
	}
	if runes := []rune(text); len(runes) > MaxInputLength {
		text = strings.TrimSpace(string(runes[:MaxInputLength])) + TruncationMarker
	}
	return text
}
