// Package llm provides the completion-service client interface and
// implementations.
package llm

import (
	"context"

	"github.com/washlane/booking-assistant/internal/model"
)

// Tool describes one callable tool in the schema handed to the model.
// Parameters is a JSON-schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// CompletionRequest is one completion-service invocation.
type CompletionRequest struct {
	Model       string
	Messages    []model.Message
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// Completion is the model's answer: either one or more tool calls, or final
// text. Both fields empty means the model declined to answer.
type Completion struct {
	Content   string
	ToolCalls []model.ToolCall
	Model     string
	TokensIn  int
	TokensOut int
	LatencyMs int64
}

// Client is the interface for completion-service providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Name returns the provider name.
	Name() string
}
