// Package mock provides deterministic stand-ins for the LLM-backed
// extractor and evaluator, selected by the process-wide mock mode. The
// extractor scrapes fields with regular expressions and gates relevance on a
// keyword list; it approximates, but does not reproduce, the real model's
// judgment.
package mock

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// DefaultLatency simulates the extraction model's response time.
const DefaultLatency = 500 * time.Millisecond

// traumaKeywords is the relevance gate. Any hit classifies the text as a
// trauma/EMS report.
var traumaKeywords = []string{
	"trauma", "injury", "accident", "crash", "fall", "mvc", "mcc", "gsw",
	"gcs", "sbp", "hr", "rr", "blood pressure", "heart rate", "intubat",
	"fracture", "wound", "bleed", "burn", "penetrating", "ejection", "ems",
	"ambulance", "paramedic", "patient", "yo", "y/o", "year old",
}

var (
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*(?:yo|y/o|year[s]?\s*old|yr)`),
		regexp.MustCompile(`(?i)age\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*(?:month|mo)\s*old`),
	}
	sbpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)sbp\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)systolic\s*(?:blood\s*pressure)?\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)bp\s*:?\s*(\d+)\s*/`),
		regexp.MustCompile(`(?i)(\d+)\s*/\s*\d+\s*(?:mmhg|mm\s*hg)`),
	}
	hrPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)hr\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)heart\s*rate\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)pulse\s*:?\s*(\d+)`),
	}
	rrPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)rr\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)resp(?:iratory)?\s*rate\s*:?\s*(\d+)`),
	}
	gcsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)gcs\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)glasgow\s*(?:coma\s*(?:scale|score))?\s*:?\s*(\d+)`),
	}
)

// mechanisms are matched in order; the first hit becomes the mechanism
// field.
var mechanisms = []string{
	"mvc", "mcc", "fall", "crash", "gsw", "stabbing", "pedestrian",
	"ejection", "bicycle",
}

// Extractor is a regex-based triage.Extractor.
type Extractor struct {
	// Latency delays each call to simulate the vendor round trip. Zero
	// disables the delay.
	Latency time.Duration
}

// NewExtractor returns an Extractor with the default simulated latency.
func NewExtractor() *Extractor {
	return &Extractor{Latency: DefaultLatency}
}

// Extract scrapes structured fields from the report text.
func (e *Extractor) Extract(ctx context.Context, report string) (*triage.ExtractionResult, error) {
	if err := e.sleep(ctx); err != nil {
		return nil, err
	}

	text := strings.ToLower(report)

	isTrauma := false
	for _, kw := range traumaKeywords {
		if strings.Contains(text, kw) {
			isTrauma = true
			break
		}
	}

	fields := triage.ExtractedFields{
		Age: firstInt(report, agePatterns),
		SBP: firstFloat(report, sbpPatterns),
		HR:  firstFloat(report, hrPatterns),
		RR:  firstFloat(report, rrPatterns),
		GCS: firstFloat(report, gcsPatterns),
	}

	if strings.Contains(text, "intubat") {
		airway := "Intubated"
		fields.AirwayStatus = &airway
	}
	for _, m := range mechanisms {
		if strings.Contains(text, m) {
			mech := m
			fields.Mechanism = &mech
			break
		}
	}

	return &triage.ExtractionResult{Fields: fields, IsTraumaReport: isTrauma}, nil
}

func (e *Extractor) sleep(ctx context.Context) error {
	if e.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(e.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstInt(report string, patterns []*regexp.Regexp) *int {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(report); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return &v
			}
		}
	}
	return nil
}

func firstFloat(report string, patterns []*regexp.Regexp) *float64 {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(report); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &v
			}
		}
	}
	return nil
}
