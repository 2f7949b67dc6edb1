package llm

import (
	"context"
	"time"
)

// timeoutProvider bounds every Generate call with a deadline. The deadline
// caps the whole call including retries, so one stalled provider cannot hang
// a pipeline stage past the configured budget.
type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

// WithTimeout wraps a provider so each Generate call runs under a deadline.
// A zero or negative timeout returns the provider unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{next: p, timeout: timeout}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string {
	return t.next.ModelID()
}
