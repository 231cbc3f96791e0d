// Package llm wraps chat-completion providers behind a single interface so
// the answer pipeline does not care which backend generates text.
package llm

import "context"

// Provider defines the interface for completion backends.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
