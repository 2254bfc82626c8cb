// Package push delivers best-effort push notifications to device tokens.
// Delivery is at-most-once: failures are reported to the caller for logging
// and token pruning but are never retried.
package push

import "context"

// Message is the payload delivered to each device
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Sender attempts delivery to the given tokens and reports which tokens the
// provider considers no longer valid.
type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message) (invalid []string, err error)
}

// NopSender discards all messages. Used when no push provider is configured.
type NopSender struct{}

// Send implements Sender
func (NopSender) Send(ctx context.Context, tokens []string, msg Message) ([]string, error) {
	return nil, nil
}
