// Package llm wraps the Anthropic Messages API behind a small Request/Response shape
// so callers (the evaluation adapter, CV content extraction) don't touch the SDK
// directly. New does not contact the provider or check the API key; a missing or
// invalid key surfaces as an error from the first request.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrEmptyResponse is returned when the provider responds with no content blocks.
var ErrEmptyResponse = errors.New("llm: provider returned an empty response")

// ErrTruncated is returned when the response was cut off by the max_tokens limit.
var ErrTruncated = errors.New("llm: response truncated at max_tokens")

type Client struct {
	inner anthropic.Client
}

func New(apiKey string) *Client {
	return &Client{inner: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

// Request is a single-turn system+user completion request.
type Request struct {
	Model     string
	MaxTokens int64
	System    string
	User      string
}

// Response carries the concatenated text of every text content block plus usage.
type Response struct {
	Text         string
	StopReason   string
	InputTokens  int64
	OutputTokens int64
}

// Complete sends req as a single-turn message and returns the assembled text
// response. Returns ErrTruncated (wrapped, so errors.Is still matches) when the
// provider's stop reason indicates the response was cut off — callers must not
// silently accept a partial JSON body.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	msg, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages.new: %w", err)
	}
	if len(msg.Content) == 0 {
		return nil, ErrEmptyResponse
	}

	var text string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}

	resp := &Response{
		Text:         text,
		StopReason:   string(msg.StopReason),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}

	if resp.StopReason == "max_tokens" {
		return resp, fmt.Errorf("%w: used %d output tokens", ErrTruncated, resp.OutputTokens)
	}

	return resp, nil
}
