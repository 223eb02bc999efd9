// README: Chat prompt rendering (persona preamble, replayed history, reply cue).
package assistant

import "strings"

const persona = `You are a friendly and knowledgeable travel assistant. You help travelers discover destinations, plan itineraries, find places to eat and stay, understand local customs, and stay within budget.
Be concise, warm, and specific. Recommend real places when you can. If you are unsure about something, say so instead of guessing.
Do not help with anything unsafe or illegal, and do not ask for passwords, payment details, or other sensitive personal information.`

const formatRule = "Reply in plain conversational text. Do not use markdown, bullet symbols, headings, or code formatting."

// buildPrompt renders the persona, the replayable history, and a trailing "AI:" cue.
func buildPrompt(history []Turn) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nConversation so far:\n")
	for i, t := range history {
		if t.Failed {
			continue
		}
		if t.Role == RoleUser && i+1 < len(history) && history[i+1].Failed {
			continue
		}
		if t.Role == RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("AI: ")
		}
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(formatRule)
	b.WriteString("\nAI:")
	return b.String()
}
