package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectUrgency(t *testing.T) {
	rs := DefaultRules()

	tests := []struct {
		name     string
		text     string
		want     UrgencyLevel
		wantRule string
	}{
		{
			name:     "explicit crisis statement",
			text:     "i want to kill myself",
			want:     UrgencyCrisis,
			wantRule: "active_intent",
		},
		{
			name:     "crisis with a plan",
			text:     "i have a plan to kill myself",
			want:     UrgencyCrisis,
			wantRule: "explicit_plan",
		},
		{
			name:     "farewell message",
			text:     "goodbye forever everyone",
			want:     UrgencyCrisis,
			wantRule: "farewell",
		},
		{
			name:     "concern level hopelessness",
			text:     "i feel so hopeless about everything",
			want:     UrgencyConcern,
			wantRule: "hopelessness",
		},
		{
			name:     "concern level burden",
			text:     "honestly i'm a burden to my family",
			want:     UrgencyConcern,
			wantRule: "burden",
		},
		{
			name: "crisis outranks concern in same message",
			text: "i feel so hopeless and i can't go on anymore",
			want: UrgencyCrisis,
		},
		{
			name: "ordinary message",
			text: "i had a pretty rough day at work",
			want: UrgencyNone,
		},
		{
			name: "discussing the topic without intent",
			text: "my friend told me about a suicide prevention charity",
			want: UrgencyNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, rule := rs.DetectUrgency(tt.text)
			assert.Equal(t, tt.want, level)
			if tt.wantRule != "" {
				assert.Equal(t, tt.wantRule, rule)
			}
		})
	}
}

func TestDetectDistortions(t *testing.T) {
	rs := DefaultRules()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "catastrophizing and overgeneralization share trigger words",
			text: "things always go wrong for me",
			want: []string{"catastrophizing", "overgeneralization"},
		},
		{
			name: "all or nothing",
			text: "i am a complete failure at this",
			want: []string{"all_or_nothing"},
		},
		{
			name: "personalization",
			text: "the project slipped and it's my fault",
			want: []string{"personalization"},
		},
		{
			name: "no distortion",
			text: "i went for a walk and felt a bit better",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.DetectDistortions(tt.text))
		})
	}
}

func TestLoadRules(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		rs, err := LoadRules("")
		require.NoError(t, err)
		level, _ := rs.DetectUrgency("i want to die")
		assert.Equal(t, UrgencyCrisis, level)
	})

	t.Run("custom catalog overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		custom := `version: 1
crisis:
  - name: code_red
    pattern: \bcode red\b
concern:
  - name: code_yellow
    pattern: \bcode yellow\b
distortions:
  - name: catastrophizing
    pattern: \bdoomed\b
`
		require.NoError(t, os.WriteFile(path, []byte(custom), 0o600))

		rs, err := LoadRules(path)
		require.NoError(t, err)

		level, rule := rs.DetectUrgency("this is a code red situation")
		assert.Equal(t, UrgencyCrisis, level)
		assert.Equal(t, "code_red", rule)

		level, _ = rs.DetectUrgency("i want to die")
		assert.Equal(t, UrgencyNone, level)

		assert.Equal(t, []string{"catastrophizing"}, rs.DetectDistortions("we are doomed"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		bad := `version: 1
crisis:
  - name: broken
    pattern: "("
concern:
  - name: ok
    pattern: ok
`
		require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("empty tiers rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o600))
		_, err := LoadRules(path)
		assert.Error(t, err)
	})
}
