package guardrails

import "strings"

// Role labels frame the prompt and double as the markers SanitizeReply cuts
// on. Keep them in sync with SystemPrompt.
const (
	RoleUser      = "User:"
	RoleSystem    = "System:"
	RoleAssistant = "Assistant:"
)

// SystemPrompt is the fixed behavioral preamble sent ahead of every message.
var SystemPrompt = strings.Join([]string{
	"You are LiteGPT, a simple local chatbot.",
	"If the user provides their name, acknowledge it once and stop.",
	"Do not repeat names.",
	"Do not create conversations.",
	"Do not invent dialogue.",
	"Do not act like customer support.",
	"Answer only the current user input.",
}, "\n")

// BuildPrompt frames a single user message for a completion model:
// the preamble, the labelled user turn and an open assistant turn.
func BuildPrompt(preamble, message string) string {
	var b strings.Builder
	b.Grow(len(preamble) + len(message) + len(RoleUser) + len(RoleAssistant) + 6)
	b.WriteString(preamble)
	b.WriteString("\n\n")
	b.WriteString(RoleUser)
	b.WriteString(" ")
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(RoleAssistant)
	return b.String()
}
