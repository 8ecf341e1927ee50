package port

import "context"

// ModelClient abstracts a single LLM backend. Every vendor exposes the same
// single-method contract: send one zero-shot prompt, get the raw reply text.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
