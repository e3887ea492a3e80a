package llm

import "context"

// Provider is the completion contract; the call is bounded by the context
// deadline and network or timeout errors propagate to the caller.
type Provider interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
