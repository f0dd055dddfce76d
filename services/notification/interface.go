package notification

import (
	"context"
	"fmt"
)

// Channel is one outbound notification transport. Sends are fire-and-forget
// from the caller's perspective: a failed channel is logged and skipped, it
// never blocks other channels.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient, subject, body string) error
}

// ExternalServiceError wraps a failure of an outbound transport.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
