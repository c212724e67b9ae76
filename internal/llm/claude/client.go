// Package claude implements the triage extraction and evaluation contracts
// on the Anthropic Messages API. Both calls force a single tool use so the
// model's output is schema-shaped JSON rather than prose.
package claude

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

const (
	extractionMaxTokens = 1024
	evaluationMaxTokens = 4096
)

// UsageObserver receives per-call token usage (wired to Prometheus by main).
type UsageObserver func(model string, inputTokens, outputTokens int64, seconds float64)

// Client talks to the Anthropic API with one model per concern: a fast model
// for field extraction, a stronger one for criteria evaluation. It
// implements triage.Extractor and triage.Evaluator.
type Client struct {
	api             anthropic.Client
	extractionModel string
	evaluationModel string
	criteria        *criteria.Set
	observeUsage    UsageObserver
}

// New creates a Client. The criteria set is used to resolve evaluator match
// ids back to full criteria.
func New(apiKey, extractionModel, evaluationModel string, set *criteria.Set) *Client {
	return &Client{
		api:             anthropic.NewClient(option.WithAPIKey(apiKey)),
		extractionModel: extractionModel,
		evaluationModel: evaluationModel,
		criteria:        set,
	}
}

// SetUsageObserver installs a per-call usage callback. Must be called before
// the client is shared across goroutines.
func (c *Client) SetUsageObserver(fn UsageObserver) { c.observeUsage = fn }

// callWithTool sends a single-turn, tool-forced Messages request and returns
// the tool_use input payload.
func (c *Client) callWithTool(ctx context.Context, model, system, user string, maxTokens int64, tool anthropic.ToolParam) ([]byte, error) {
	start := time.Now()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		Tools:     []anthropic.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: tool.Name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages call: %w", err)
	}

	if c.observeUsage != nil {
		c.observeUsage(model, msg.Usage.InputTokens, msg.Usage.OutputTokens, time.Since(start).Seconds())
	}

	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			return []byte(variant.JSON.Input.Raw()), nil
		}
	}
	return nil, fmt.Errorf("model did not return a %s tool_use response", tool.Name)
}
