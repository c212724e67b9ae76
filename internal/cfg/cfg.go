package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// placeholder API keys that mean "no real key configured".
var placeholderKeys = map[string]bool{
	"":                  true,
	"sk-placeholder":    true,
	"your-api-key-here": true,
}

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	AnthropicAPIKey       string
	ExtractionModel       string
	EvaluationModel       string
	MockMode              bool
	DatabaseURL           string
	SlackWebhookURL       string
	APIToken              string
	RateLimit             int
	RateWindowSeconds     int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.AnthropicAPIKey, "anthropic-api-key", "", "API key for the Anthropic API (empty = mock mode)")
	fs.StringVar(&c.ExtractionModel, "extraction-model", "claude-3-5-haiku-latest", "Claude model used for field extraction")
	fs.StringVar(&c.EvaluationModel, "evaluation-model", "claude-sonnet-4-20250514", "Claude model used for semantic criteria evaluation")
	fs.BoolVar(&c.MockMode, "mock-mode", false, "force mock LLM providers regardless of API key")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for criteria (empty = embedded dataset)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for Level 1 activation notifications")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on API endpoints (empty = no auth)")
	fs.IntVar(&c.RateLimit, "rate-limit", 10, "max triage requests per client per window (0 = disabled)")
	fs.IntVar(&c.RateWindowSeconds, "rate-window-seconds", 60, "rate limit window length in seconds")
}

// MockModeEffective reports whether the service should run with mock LLM
// providers, either because mock mode was requested or because no usable
// API key was configured.
func (c *Config) MockModeEffective() bool {
	return c.MockMode || placeholderKeys[c.AnthropicAPIKey]
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Models are required even in mock mode so flipping to a real key
	// cannot leave the service without a model to call.
	if c.ExtractionModel == "" {
		errs = append(errs, errors.New("EXTRACTION_MODEL is required"))
	}
	if c.EvaluationModel == "" {
		errs = append(errs, errors.New("EVALUATION_MODEL is required"))
	}

	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT %d (must be >= 0)", c.RateLimit))
	}
	if c.RateWindowSeconds <= 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_WINDOW_SECONDS %d (must be >= 1)", c.RateWindowSeconds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
