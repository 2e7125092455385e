package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AthenaOS24/AthenaOS/internal/session"
)

func assistantMsg(content string) session.Message {
	return session.Message{Role: session.RoleAssistant, Content: content}
}

func userMsg(content string) session.Message {
	return session.Message{Role: session.RoleUser, Content: content}
}

func TestDetectRepetition(t *testing.T) {
	tests := []struct {
		name    string
		history []session.Message
		want    []string
	}{
		{
			name:    "empty history",
			history: nil,
			want:    nil,
		},
		{
			name: "user turns only",
			history: []session.Message{
				userMsg("I'm here for you, listen to this"),
				userMsg("I'm here for you, again"),
			},
			want: nil,
		},
		{
			name: "two of four assistant turns share an opener",
			history: []session.Message{
				assistantMsg("I'm here for you. Tell me more about today."),
				assistantMsg("What happened next?"),
				assistantMsg("I'm here for you. Let's slow down a moment."),
				assistantMsg("Could you describe that feeling?"),
			},
			want: []string{"I'm here for you"},
		},
		{
			name: "single occurrence is not flagged",
			history: []session.Message{
				assistantMsg("Thank you for sharing that with me."),
				assistantMsg("What would feel manageable right now?"),
			},
			want: nil,
		},
		{
			name: "two hits diluted by a long history",
			history: []session.Message{
				assistantMsg("That sounds really tough."),
				assistantMsg("That sounds really tough."),
				assistantMsg("a"), assistantMsg("b"), assistantMsg("c"),
				assistantMsg("d"), assistantMsg("e"),
			},
			want: nil,
		},
		{
			name: "matching is case insensitive",
			history: []session.Message{
				userMsg("hello"),
				assistantMsg("THANK YOU FOR SHARING. That took courage."),
				userMsg("thanks"),
				assistantMsg("thank you for sharing, truly."),
			},
			want: []string{"Thank you for sharing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectRepetition(tt.history))
		})
	}
}
