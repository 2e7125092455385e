package analysis

import (
	"math/rand"
	"sync"
)

// negativeEmotionFloor is the score above which a negative emotion alone
// justifies a grounding technique.
const negativeEmotionFloor = 0.7

var negativeEmotions = map[string]bool{
	"sadness": true,
	"anger":   true,
	"fear":    true,
	"disgust": true,
}

var cbtInterventions = map[string][]string{
	"catastrophizing": {
		"Could you try identifying one piece of evidence that things might not be as bad as they seem?",
		"When we imagine the worst, it helps to ask: 'What's the most likely outcome?' Can you think of that?",
		"Let's try a 'best case, worst case, most likely case' exercise. What's the most realistic scenario here?",
		"Catastrophizing can make situations feel overwhelming. What's one small step you could take right now?",
	},
	"all_or_nothing": {
		"It seems like you're seeing things as all good or all bad. Can you think of a middle ground or small positive aspect?",
		"Life is rarely 100% one way or another. What's one small step you could take that isn't all-or-nothing?",
		"Let's find the '50% solution' - what's one manageable action you could take right now?",
		"Black-and-white thinking can be limiting. What's one 'maybe' or 'sometimes' possibility here?",
	},
	"overgeneralization": {
		"You mentioned words like 'always' or 'never.' Could you reflect on a time when things were different?",
		"One experience doesn't define all experiences. Can you think of a time when this wasn't true for you?",
		"Let's challenge that 'always' thought. What's one counterexample you can remember?",
		"Overgeneralizing can trap us in negative patterns. What's one exception to this rule you can identify?",
	},
	"personalization": {
		"You seem to be taking a lot of responsibility for this. Can you consider other factors that might be contributing?",
		"Not everything that happens is because of us. What else might be influencing this situation?",
		"Let's separate what we can control from what we can't. What part of this is truly in your hands?",
		"Personalizing events can be exhausting. What's one thing outside your control that might be at play here?",
	},
}

var generalTechniques = []string{
	"Try a grounding exercise: Name 5 things you can see, 4 you can touch, 3 you can hear, 2 you can smell, 1 you can taste.",
	"Deep breathing can help: Inhale for 4 counts, hold for 4, exhale for 4, repeat 3 times.",
	"Let's try thought challenging: What's one piece of evidence that contradicts this negative thought?",
	"Behavioral activation: What's one small, positive action you could take in the next hour?",
	"Let's reframe: Instead of 'I failed,' try 'I'm learning how to improve.' What's one thing you're learning?",
}

// InterventionSelector picks a CBT micro-intervention matching detected
// distortions, or a general grounding technique when only raw negative
// emotion is present. The random source is injectable so tests can be
// deterministic.
type InterventionSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewInterventionSelector builds a selector around src. A nil src uses an
// unseeded source.
func NewInterventionSelector(src rand.Source) *InterventionSelector {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &InterventionSelector{rng: rand.New(src)}
}

// Select returns an intervention for the first recognized distortion. With no
// distortions it draws from the full general pool when a strong negative
// emotion is present, and from the two gentlest general techniques otherwise.
func (s *InterventionSelector) Select(distortions []string, emotions []Label) string {
	for _, d := range distortions {
		if pool, ok := cbtInterventions[d]; ok {
			return pool[s.intn(len(pool))]
		}
	}
	if hasStrongNegativeEmotion(emotions) {
		return generalTechniques[s.intn(len(generalTechniques))]
	}
	return generalTechniques[s.intn(2)]
}

// GeneralTechniques returns a copy of the calming techniques offered when no
// specific distortion applies.
func GeneralTechniques() []string {
	out := make([]string, len(generalTechniques))
	copy(out, generalTechniques)
	return out
}

func hasStrongNegativeEmotion(emotions []Label) bool {
	for _, e := range emotions {
		if negativeEmotions[e.Label] && e.Score > negativeEmotionFloor {
			return true
		}
	}
	return false
}

func (s *InterventionSelector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
