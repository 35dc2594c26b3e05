// Package channel delivers outbound messages through the messaging gateway.
package channel

import "context"

// Sender delivers a text message to a conversation key.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}
