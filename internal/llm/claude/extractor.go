package claude

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// extractionPayload mirrors the extraction tool's input schema. Decoding
// into this struct is the schema check; a shape mismatch is treated as an
// extraction failure by the caller.
type extractionPayload struct {
	IsTraumaReport    bool     `json:"isTraumaReport"`
	Age               *int     `json:"age"`
	SBP               *float64 `json:"sbp"`
	HR                *float64 `json:"hr"`
	RR                *float64 `json:"rr"`
	GCS               *float64 `json:"gcs"`
	AirwayStatus      *string  `json:"airwayStatus"`
	BreathingStatus   *string  `json:"breathingStatus"`
	Mechanism         *string  `json:"mechanism"`
	Injuries          []string `json:"injuries"`
	AdditionalContext *string  `json:"additionalContext"`
}

// Extract asks the extraction model for structured fields from the report.
func (c *Client) Extract(ctx context.Context, report string) (*triage.ExtractionResult, error) {
	user := "Extract structured fields from this EMS trauma report. " +
		"The text may be a speech-to-text transcription with recognition errors, or a typed narrative.\n\n" + report

	raw, err := c.callWithTool(ctx, c.extractionModel, extractionSystemPrompt, user,
		extractionMaxTokens, extractionTool())
	if err != nil {
		return nil, err
	}

	var payload extractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid extraction payload: %w", err)
	}

	return &triage.ExtractionResult{
		IsTraumaReport: payload.IsTraumaReport,
		Fields: triage.ExtractedFields{
			Age:               payload.Age,
			SBP:               payload.SBP,
			HR:                payload.HR,
			RR:                payload.RR,
			GCS:               payload.GCS,
			AirwayStatus:      payload.AirwayStatus,
			BreathingStatus:   payload.BreathingStatus,
			Mechanism:         payload.Mechanism,
			Injuries:          payload.Injuries,
			AdditionalContext: payload.AdditionalContext,
		},
	}, nil
}
