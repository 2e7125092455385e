package chat

import (
	"fmt"
	"strings"

	"github.com/AthenaOS24/AthenaOS/internal/analysis"
)

// OffTopicRefusal is the only sentence the responder may use to decline
// questions outside emotional well-being. Kept verbatim so clients can
// detect it.
const OffTopicRefusal = `I'm sorry, I can only answer questions related to mental and emotional well-being. How are you feeling today?`

// FallbackReply is returned when the responder cannot produce text. It never
// exposes the underlying failure.
const FallbackReply = "I appreciate you sharing that. I'm having a little trouble processing my thoughts right now, but I'm still here to listen. Could you tell me a bit more?"

const personaPreamble = `You are Athena, a compassionate AI therapist specializing in Cognitive Behavioral Therapy (CBT).

**ABSOLUTE RULE: YOUR ONLY FUNCTION IS MENTAL WELL-BEING SUPPORT.**
You are an AI therapist. You are NOT a general knowledge assistant, search engine, or technical helper.
If the user asks ANY question that is NOT directly about their feelings, thoughts, personal situations, or self-improvement (e.g., questions about facts, history, science, cooking, coding, finance), you MUST strictly refuse.
Your refusal response must be EXACTLY this, and nothing else: "` + OffTopicRefusal + `"`

// BuildSystemPrompt assembles the responder instruction set from one
// analysis pass: persona and topic scope, anti-repetition directives,
// the detected user state, and an optional CBT micro-instruction.
func BuildSystemPrompt(result analysis.Result) string {
	var b strings.Builder
	b.WriteString(personaPreamble)
	b.WriteString("\n\nCRITICAL RESPONSE GUIDELINES:\n")
	if instr := antiRepetitionInstruction(result.CBT.RepetitivePatterns); instr != "" {
		b.WriteString("- " + instr + "\n")
	}
	starters := analysis.AntiRepetitionStarters()
	b.WriteString("- Vary your opening phrases; avoid these: " + strings.Join(starters[:4], ", ") + ".\n")
	b.WriteString("- Keep responses concise (100-150 words).\n")
	b.WriteString("- Always validate emotions before offering techniques.\n")
	b.WriteString("- Use warm, professional language without clinical jargon.\n")
	b.WriteString("- End with an open-ended question.\n")

	b.WriteString("\nCURRENT USER STATE:\n")
	fmt.Fprintf(&b, "- Sentiment: %s (confidence: %.2f)\n", result.Sentiment.Label, result.Sentiment.Score)
	fmt.Fprintf(&b, "- Primary Emotion: %s\n", primaryEmotion(result.Emotions))
	fmt.Fprintf(&b, "- Detected CBT Patterns: %s\n", patternsOrNone(result.CBT.Patterns))
	fmt.Fprintf(&b, "- Urgency Level: %s\n", urgencyOrRoutine(result.UrgencyLevel))

	if instr := cbtInstruction(result); instr != "" {
		b.WriteString("\n" + instr + "\n")
	}

	b.WriteString(`
CBT INTEGRATION:
- If distortions are detected, gently challenge with curiosity, not confrontation.
- Frame interventions as collaborative experiments.
- Always tie techniques to the user's specific situation.
- Balance validation (70%) with gentle guidance (30%).

Your role is to create a safe, empathetic space where the user feels heard and empowered.`)
	return b.String()
}

func antiRepetitionInstruction(repetitive []string) string {
	if len(repetitive) == 0 {
		return ""
	}
	if len(repetitive) > 3 {
		repetitive = repetitive[:3]
	}
	quoted := make([]string, len(repetitive))
	for i, p := range repetitive {
		quoted[i] = "'" + p + "'"
	}
	return "Avoid these repetitive starters from history: " + strings.Join(quoted, ", ") + ". Use varied openings."
}

// cbtInstruction produces the micro-instruction for the primary distortion:
// validate, introduce the concept, suggest the selected technique, end with
// an open question. Strong negative emotion without a distortion gets a
// containment-first variant instead.
func cbtInstruction(result analysis.Result) string {
	if len(result.CBT.Patterns) > 0 {
		return fmt.Sprintf(`The user exhibits %s cognitive distortion. Your response should:
1. First validate their emotions and show understanding.
2. Gently introduce the CBT concept without jargon.
3. Suggest the specific technique: '%s'.
4. End with an open-ended question to continue the dialogue.`,
			result.CBT.Patterns[0], result.CBT.Intervention)
	}
	for _, e := range result.Emotions {
		switch e.Label {
		case "sadness", "anger", "fear":
			if e.Score > 0.7 {
				return `The user expresses strong negative emotions. Prioritize:
1. Deep empathy and validation of their feelings.
2. A simple, immediate coping technique (like breathing or grounding).
3. An invitation to explore the emotion further.
4. Avoid problem-solving; focus on emotional containment.`
			}
		}
	}
	return ""
}

func primaryEmotion(emotions []analysis.Label) string {
	if len(emotions) == 0 {
		return "unclear"
	}
	return emotions[0].Label
}

func patternsOrNone(patterns []string) string {
	if len(patterns) == 0 {
		return "None"
	}
	return strings.Join(patterns, ", ")
}

func urgencyOrRoutine(level analysis.UrgencyLevel) string {
	if level == "" || level == analysis.UrgencyNone {
		return "Routine"
	}
	return string(level)
}
