package analysis

// UrgencyLevel classifies self-harm risk signaled by a message.
type UrgencyLevel string

const (
	UrgencyCrisis  UrgencyLevel = "crisis"
	UrgencyConcern UrgencyLevel = "concern"
	UrgencyNone    UrgencyLevel = "none"
)

// Label is a classifier verdict: a label from a fixed vocabulary plus a
// confidence score in [0,1].
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// CBTAnalysis groups the cognitive-behavioral findings for one turn.
type CBTAnalysis struct {
	// Patterns holds detected distortion names in rule-check order.
	Patterns []string `json:"patterns"`
	// Intervention is the selected coping technique, empty if none applies.
	Intervention string `json:"intervention,omitempty"`
	// RepetitivePatterns lists assistant openings flagged as overused.
	RepetitivePatterns []string `json:"repetitive_patterns"`
}

// Result is the structured output of one orchestration pass over one input.
type Result struct {
	Sentiment    Label        `json:"sentiment"`
	Emotions     []Label      `json:"emotions"`
	CBT          CBTAnalysis  `json:"cbt_analysis"`
	UrgencyLevel UrgencyLevel `json:"urgency_level"`
	IsHarmful    bool         `json:"is_harmful"`
	// Resources is populated only when UrgencyLevel is not none.
	Resources []string `json:"resources,omitempty"`

	// SanitizedInput is the cleaned text every downstream stage saw.
	SanitizedInput string `json:"-"`
	// DegradedStages names classifier stages that fell back to neutral
	// defaults, so callers cannot mistake a degraded pass for a clean one.
	DegradedStages []string `json:"-"`
}

// Degraded reports whether the named stage fell back to its neutral default.
func (r *Result) Degraded(stage string) bool {
	for _, s := range r.DegradedStages {
		if s == stage {
			return true
		}
	}
	return false
}
