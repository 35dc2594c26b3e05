// Package model defines data structures shared across the assistant.
package model

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured request from the completion service to invoke a
// named tool with JSON-encoded arguments.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a single conversation message. Assistant messages may carry tool
// calls; tool messages carry the result of exactly one call.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResult builds a tool-role message answering the given call.
func ToolResult(call ToolCall, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}
}

// InboundMessage is one event delivered by the messaging gateway.
type InboundMessage struct {
	ID                  string   `json:"id"`
	From                string   `json:"from"`
	Body                string   `json:"body"`
	SenderName          string   `json:"sender_name,omitempty"`
	FromSelf            bool     `json:"from_self,omitempty"`
	IsGroup             bool     `json:"is_group,omitempty"`
	Mentions            []string `json:"mentions,omitempty"`
	QuotedMessageAuthor string   `json:"quoted_message_author,omitempty"`
}

// CustomerInfo identifies the counterparty of a conversation.
type CustomerInfo struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}
