package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/washlane/booking-assistant/internal/model"
)

func TestTranscript_UserAndAssistantTurnsOnly(t *testing.T) {
	history := []model.Message{
		model.SystemMessage("you are a receptionist"),
		model.UserMessage("can I book a wash?"),
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "c1", Name: "book_appointment"}}},
		model.ToolResult(model.ToolCall{ID: "c1", Name: "book_appointment"}, "Booking confirmed!"),
		model.AssistantMessage("All set, see you tomorrow!"),
	}

	got := Transcript(history)
	assert.Equal(t, "User: can I book a wash?\nBot: All set, see you tomorrow!", got)
}

func TestTranscript_Empty(t *testing.T) {
	assert.Equal(t, "Chat booking conversation", Transcript(nil))
}
