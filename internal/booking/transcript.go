package booking

import (
	"strings"

	"github.com/washlane/booking-assistant/internal/model"
)

// Transcript renders a conversation as plain "User:"/"Bot:" lines for human
// audit. System and tool turns are dropped; the output is never re-parsed.
func Transcript(history []model.Message) string {
	var lines []string
	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			lines = append(lines, "User: "+msg.Content)
		case model.RoleAssistant:
			if msg.Content != "" {
				lines = append(lines, "Bot: "+msg.Content)
			}
		}
	}
	if len(lines) == 0 {
		return "Chat booking conversation"
	}
	return strings.Join(lines, "\n")
}
