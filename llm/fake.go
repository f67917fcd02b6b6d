// Fake Provider for tests.
//
// Scripted responses let orchestration tests drive the pipeline without a
// network. Exported so other packages' tests can use it too.

package llm

import (
	"context"
	"sync"
)

// FakeProvider is a scripted Provider for tests. Responses are returned in
// order; when the script runs out the last entry repeats.
type FakeProvider struct {
	mu        sync.Mutex
	name      string
	model     string
	responses []string
	errs      []error
	calls     [][]ChatMessage
	idx       int

	// Hook, when set, is consulted before the script. Returning ok=false
	// falls through to the scripted responses.
	Hook func(messages []ChatMessage) (string, bool)

	// Delay, when set, is waited on before answering so tests can interrupt
	// mid-call. The call is recorded before the wait, so CallCount observes
	// it while it blocks. The call aborts with ctx.Err() if the context
	// ends first.
	Delay <-chan struct{}
}

// NewFakeProvider creates a fake provider with scripted responses.
func NewFakeProvider(responses ...string) *FakeProvider {
	return &FakeProvider{
		name:      "fake",
		model:     "fake-model",
		responses: responses,
	}
}

// WithError appends an error to the script; it is returned in sequence with
// the responses (errors consume a turn just like responses).
func (p *FakeProvider) WithError(err error) *FakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, "")
	for len(p.errs) < len(p.responses)-1 {
		p.errs = append(p.errs, nil)
	}
	p.errs = append(p.errs, err)
	return p
}

// Name returns the provider name.
func (p *FakeProvider) Name() string { return p.name }

// Model returns the current model.
func (p *FakeProvider) Model() string { return p.model }

// Calls returns a copy of every message slice the provider has seen.
func (p *FakeProvider) Calls() [][]ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]ChatMessage, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many chat calls have been made.
func (p *FakeProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *FakeProvider) next(messages []ChatMessage) (string, error) {
	p.mu.Lock()
	recorded := make([]ChatMessage, len(messages))
	copy(recorded, messages)
	p.calls = append(p.calls, recorded)

	i := p.idx
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	p.idx++

	var content string
	var err error
	if i >= 0 {
		content = p.responses[i]
		if i < len(p.errs) {
			err = p.errs[i]
		}
	}
	hook := p.Hook
	p.mu.Unlock()

	if hook != nil {
		if hooked, ok := hook(messages); ok {
			return hooked, nil
		}
	}
	return content, err
}

// Chat returns the next scripted response.
func (p *FakeProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	return p.ChatWithFormat(ctx, messages, nil)
}

// ChatWithFormat returns the next scripted response, ignoring format.
func (p *FakeProvider) ChatWithFormat(ctx context.Context, messages []ChatMessage, _ *ResponseFormat) (LLMResponse, error) {
	content, err := p.next(messages)
	if p.Delay != nil {
		select {
		case <-p.Delay:
		case <-ctx.Done():
			return LLMResponse{}, ctx.Err()
		}
	}
	if err != nil {
		return LLMResponse{}, err
	}
	return LLMResponse{Content: content}, nil
}

// StreamChat emits the next scripted response as a single chunk.
func (p *FakeProvider) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	content, err := p.next(messages)
	if p.Delay != nil {
		select {
		case <-p.Delay:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if content != "" {
		select {
		case chunks <- content:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, nil
}

// Verify FakeProvider implements Provider
var _ Provider = (*FakeProvider)(nil)
