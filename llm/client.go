// Two-tier LLM client.
//
// Classification and argument extraction gate an extra round trip before
// the user hears anything, so they run on a low-latency model tier kept
// separate from the tier that writes the final reply.

package llm

import (
	"context"
)

// Tier selects which model a call runs on.
type Tier int

const (
	// TierFast is the low-latency tier for classification and extraction.
	TierFast Tier = iota
	// TierResponse is the main tier for user-facing replies.
	TierResponse
)

// String returns the tier name.
func (t Tier) String() string {
	if t == TierFast {
		return "fast"
	}
	return "response"
}

// Client wraps a fast and a response provider behind tier selection.
type Client struct {
	fast     Provider
	response Provider
}

// NewClient creates a client with distinct fast and response providers.
func NewClient(fast, response Provider) *Client {
	return &Client{fast: fast, response: response}
}

// NewSingleTierClient uses one provider for both tiers.
func NewSingleTierClient(p Provider) *Client {
	return &Client{fast: p, response: p}
}

// ProviderFor returns the provider backing a tier.
func (c *Client) ProviderFor(tier Tier) Provider {
	if tier == TierFast {
		return c.fast
	}
	return c.response
}

// Chat sends a chat completion on the given tier and returns the content.
func (c *Client) Chat(ctx context.Context, tier Tier, messages []ChatMessage) (string, error) {
	p := c.ProviderFor(tier)
	resp, err := p.Chat(ctx, messages)
	if err != nil {
		return "", ClassifyError(p.Name(), err)
	}
	return resp.Content, nil
}

// ChatWithFormat sends a chat completion with a response format constraint.
func (c *Client) ChatWithFormat(ctx context.Context, tier Tier, messages []ChatMessage, format *ResponseFormat) (string, error) {
	p := c.ProviderFor(tier)
	resp, err := p.ChatWithFormat(ctx, messages, format)
	if err != nil {
		return "", ClassifyError(p.Name(), err)
	}
	return resp.Content, nil
}

// StreamChat streams a chat completion on the given tier.
func (c *Client) StreamChat(ctx context.Context, tier Tier, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	p := c.ProviderFor(tier)
	usage, err := p.StreamChat(ctx, messages, chunks)
	if err != nil {
		return usage, ClassifyError(p.Name(), err)
	}
	return usage, nil
}

// Vision returns the response tier's vision capability, if any.
func (c *Client) Vision() (VisionProvider, bool) {
	if vp, ok := c.response.(VisionProvider); ok {
		return vp, true
	}
	if vp, ok := c.fast.(VisionProvider); ok {
		return vp, true
	}
	return nil, false
}
