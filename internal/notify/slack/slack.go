// Package slack sends trauma activation notifications to Slack via
// incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/acuity/internal/triage"
)

const (
	maxJustificationLen = 3000
	maxCriteriaListed   = 10
	httpTimeout         = 10 * time.Second
)

// Notifier posts completed evaluations to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a completed evaluation to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, ev *triage.CompleteEvent) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(ev)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(ev *triage.CompleteEvent) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(ev),
			{"type": "divider"},
			fieldsBlock(ev),
			{"type": "divider"},
			justificationBlock(ev),
			{"type": "divider"},
			contextBlock(ev),
		},
	}
}

func headerBlock(ev *triage.CompleteEvent) map[string]any {
	text := fmt.Sprintf("%s Trauma Activation: %s", levelEmoji(ev.Level), ev.Level)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(ev *triage.CompleteEvent) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Level:* %s", ev.Level),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Criteria matched:* %d", len(ev.Result.CriteriaMatches)),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Duration:* %.1fs", ev.Duration),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*LLM evaluation:* %s", llmStatus(ev.LLMFailed)),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func justificationBlock(ev *triage.CompleteEvent) map[string]any {
	var sb strings.Builder
	sb.WriteString(truncate(ev.Result.Justification, maxJustificationLen))

	if len(ev.Result.CriteriaMatches) > 0 {
		sb.WriteString("\n")
		for i, m := range ev.Result.CriteriaMatches {
			if i == maxCriteriaListed {
				sb.WriteString(fmt.Sprintf("\n_...and %d more_", len(ev.Result.CriteriaMatches)-maxCriteriaListed))
				break
			}
			sb.WriteString(fmt.Sprintf("\n• [%s] %s", m.ActivationLevel, m.Description))
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		text = "_No justification available._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Justification*\n\n%s", text),
		},
	}
}

func contextBlock(ev *triage.CompleteEvent) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("acuity • evaluation %s • %s", ev.EvaluationID, time.Now().UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func levelEmoji(level triage.FinalLevel) string {
	switch level {
	case triage.FinalLevel1:
		return "\U0001f534" // red circle
	case triage.FinalLevel2:
		return "\U0001f7e0" // orange circle
	case triage.FinalLevel3:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func llmStatus(failed bool) string {
	if failed {
		return "failed (partial result)"
	}
	return "ok"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
