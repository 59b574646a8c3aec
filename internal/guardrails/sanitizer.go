package guardrails

import "strings"

// turnMarkers are checked in this order, each against the already
// truncated text.
var turnMarkers = []string{RoleUser, RoleSystem, RoleAssistant}

// SanitizeReply trims raw model output and drops everything from the first
// invented conversation turn onward.
func SanitizeReply(raw string) string {
	reply := strings.TrimSpace(raw)
	for _, marker := range turnMarkers {
		if idx := strings.Index(reply, marker); idx >= 0 {
			reply = strings.TrimSpace(reply[:idx])
		}
	}
	return reply
}
