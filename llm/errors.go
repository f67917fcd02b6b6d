// Error classification for LLM calls.
//
// The orchestrator needs to tell an unreachable service apart from a slow
// one: classifier failures degrade silently while responder failures
// surface an apology, and both want an honest reason in the event log.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for common failure conditions.
var (
	// ErrUnavailable means the model service could not be reached.
	ErrUnavailable = errors.New("llm: model service unavailable")

	// ErrTimeout means the call exceeded its deadline.
	ErrTimeout = errors.New("llm: model call timed out")

	// ErrEmptyResponse means the model returned no usable content.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// ClassifyError wraps a raw provider error with the matching sentinel so
// callers can use errors.Is instead of string matching.
func ClassifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", provider, ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%s: %w: %v", provider, ErrTimeout, err)
		}
		return fmt.Errorf("%s: %w: %v", provider, ErrUnavailable, err)
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "no such host", "connection reset", "unreachable"} {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%s: %w: %v", provider, ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", provider, err)
}
