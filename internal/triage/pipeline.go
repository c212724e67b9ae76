package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

var tracer = otel.Tracer("github.com/linnemanlabs/acuity/internal/triage")

// maxEvents is the largest number of events one run can emit (four phase
// events, extraction, deterministic, llm_evaluation or its error substitute,
// result). The event channel is buffered to this capacity so a consumer that
// abandons the stream never blocks the producer.
const maxEvents = 8

// CompleteEvent summarizes a finished run for hooks (metrics, notifiers).
type CompleteEvent struct {
	EvaluationID string
	Level        FinalLevel
	Result       *EvaluationResult
	Duration     float64
	LLMFailed    bool
}

// Hooks are optional observation points the pipeline invokes as it runs.
// Nil funcs are skipped.
type Hooks struct {
	OnExtraction    func(outcome string, seconds float64)
	OnLLMEvaluation func(outcome string, seconds float64)
	OnComplete      func(e *CompleteEvent)
}

// Pipeline orchestrates one report's evaluation: extraction, age filtering,
// concurrent deterministic and semantic evaluation, and the final merge. It
// holds no per-request state; a single Pipeline serves concurrent requests.
type Pipeline struct {
	criteria  *criteria.Set
	extractor Extractor
	evaluator Evaluator
	logger    log.Logger
	hooks     Hooks
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(set *criteria.Set, extractor Extractor, evaluator Evaluator, logger log.Logger, hooks Hooks) *Pipeline {
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{
		criteria:  set,
		extractor: extractor,
		evaluator: evaluator,
		logger:    logger,
		hooks:     hooks,
	}
}

// Run evaluates a report and returns the ordered event stream. The channel
// is closed after the terminal event; its buffer covers every event the run
// can emit, so the pipeline runs to completion even if the caller walks
// away.
func (p *Pipeline) Run(ctx context.Context, report string) <-chan Event {
	events := make(chan Event, maxEvents)
	go func() {
		defer close(events)
		p.run(ctx, report, events)
	}()
	return events
}

// Collect drains an event stream into an ordered slice.
func Collect(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

// evalReply carries the semantic evaluator's verdict from its goroutine.
type evalReply struct {
	outcome *EvaluationOutcome
	err     error
}

func (p *Pipeline) run(ctx context.Context, report string, events chan<- Event) {
	start := time.Now()
	evalID := ulid.Make().String()

	ctx, span := tracer.Start(ctx, "triage.Pipeline.Run", trace.WithAttributes(
		attribute.String("acuity.evaluation.id", evalID),
		attribute.Int("acuity.report.chars", len(report)),
	))
	defer span.End()

	L := p.logger.With("evaluation_id", evalID)

	// Phase 1: extraction.
	events <- newPhaseEvent(PhaseExtracting)

	extractStart := time.Now()
	extraction, err := p.extractor.Extract(ctx, report)
	if err != nil {
		L.Error(ctx, err, "extraction failed")
		p.observeExtraction("error", extractStart)
		events <- newErrorEvent(fmt.Sprintf("Extraction failed: %v", err), "extraction", true)
		return
	}
	if !extraction.IsTraumaReport {
		L.Info(ctx, "report rejected as non-trauma input")
		p.observeExtraction("not_trauma", extractStart)
		events <- newErrorEvent(
			"This doesn't appear to be a trauma/EMS report. Please provide a trauma-related EMS narrative.",
			"extraction", false)
		return
	}
	fields := extraction.Fields
	if fields.Age == nil {
		L.Info(ctx, "report rejected: age not determinable")
		p.observeExtraction("missing_age", extractStart)
		events <- newErrorEvent(
			"Age could not be determined from the report. Age is required for triage evaluation.",
			"extraction", false)
		return
	}
	p.observeExtraction("ok", extractStart)

	warnings := CheckPlausibility(fields)
	events <- newExtractionEvent(fields, warnings)

	span.SetAttributes(attribute.Int("acuity.patient.age", *fields.Age))

	// Partition the age-filtered criteria by evaluation method.
	ageCriteria := p.criteria.ForAge(*fields.Age)
	var llmOnly, hybrid []criteria.Criterion
	for _, c := range ageCriteria {
		switch c.Method {
		case criteria.MethodLLM:
			llmOnly = append(llmOnly, c)
		case criteria.MethodHybrid:
			hybrid = append(hybrid, c)
		}
	}

	// Launch the semantic evaluation before the deterministic pass so the
	// network call overlaps the synchronous work. The reply channel is
	// buffered; the goroutine settles even if nobody receives.
	evalStart := time.Now()
	evalCh := make(chan evalReply, 1)
	go func() {
		outcome, err := p.evaluator.Evaluate(ctx, fields, llmOnly, hybrid)
		evalCh <- evalReply{outcome: outcome, err: err}
	}()

	// Phase 2a: deterministic vitals, synchronous and instant.
	events <- newPhaseEvent(PhaseEvaluatingVitals)
	deterministic := EvaluateDeterministic(fields, ageCriteria)
	events <- newDeterministicEvent(deterministic.Matches)

	L.Info(ctx, "deterministic evaluation complete",
		"matches", len(deterministic.Matches),
		"hybrid_pending", len(deterministic.HybridPending),
		"criteria_in_band", len(ageCriteria),
	)

	// Phase 2b: await the semantic evaluation.
	events <- newPhaseEvent(PhaseAnalyzingMechanism)

	var llmMatches []CriterionMatch
	var hybridConfirmations []int
	reasoning := ""
	llmFailed := false

	reply := <-evalCh
	if reply.err != nil {
		llmFailed = true
		L.Error(ctx, reply.err, "semantic evaluation failed, continuing with deterministic results")
		p.observeLLMEvaluation("error", evalStart)
		events <- newErrorEvent(
			fmt.Sprintf("LLM evaluation failed: %v. Deterministic results are still valid.", reply.err),
			"llm_evaluation", true)
	} else {
		llmMatches = reply.outcome.Matches
		hybridConfirmations = reply.outcome.HybridConfirmations
		reasoning = reply.outcome.Reasoning
		p.observeLLMEvaluation("ok", evalStart)
		events <- newLLMEvaluationEvent(llmMatches, reasoning)
	}

	// Phase 3: merge.
	confirmedHybrids := promoteConfirmedHybrids(fields, deterministic.HybridPending, hybridConfirmations)
	allMatches := MergeMatches(deterministic.Matches, confirmedHybrids, llmMatches)
	if allMatches == nil {
		allMatches = []CriterionMatch{}
	}
	level := DetermineActivationLevel(allMatches)
	justification := BuildJustification(level, allMatches)

	result := EvaluationResult{
		ExtractedFields:      fields,
		PlausibilityWarnings: warnings,
		CriteriaMatches:      allMatches,
		ActivationLevel:      level,
		Justification:        justification,
		AgentReasoning:       reasoning,
		MissingFieldWarnings: missingFieldWarnings(fields),
	}
	if result.PlausibilityWarnings == nil {
		result.PlausibilityWarnings = []PlausibilityWarning{}
	}

	events <- newPhaseEvent(PhaseComplete)
	events <- newResultEvent(result)

	duration := time.Since(start).Seconds()
	span.SetAttributes(
		attribute.String("acuity.activation_level", string(level)),
		attribute.Int("acuity.matches", len(allMatches)),
	)
	L.Info(ctx, "evaluation complete",
		"activation_level", string(level),
		"matches", len(allMatches),
		"llm_failed", llmFailed,
		"duration", duration,
	)

	if p.hooks.OnComplete != nil {
		p.hooks.OnComplete(&CompleteEvent{
			EvaluationID: evalID,
			Level:        level,
			Result:       &result,
			Duration:     duration,
			LLMFailed:    llmFailed,
		})
	}
}

func (p *Pipeline) observeExtraction(outcome string, start time.Time) {
	if p.hooks.OnExtraction != nil {
		p.hooks.OnExtraction(outcome, time.Since(start).Seconds())
	}
}

func (p *Pipeline) observeLLMEvaluation(outcome string, start time.Time) {
	if p.hooks.OnLLMEvaluation != nil {
		p.hooks.OnLLMEvaluation(outcome, time.Since(start).Seconds())
	}
}

// missingFieldWarnings names, per absent vital, which criteria cannot be
// fully evaluated as a result.
func missingFieldWarnings(fields ExtractedFields) []string {
	warnings := []string{}
	if fields.SBP == nil {
		warnings = append(warnings, "Without SBP, blood pressure criteria cannot be fully evaluated.")
	}
	if fields.HR == nil {
		warnings = append(warnings, "Without HR, heart rate criteria cannot be fully evaluated.")
	}
	if fields.RR == nil {
		warnings = append(warnings, "Without RR, respiratory rate criteria cannot be fully evaluated.")
	}
	if fields.GCS == nil {
		warnings = append(warnings, "Without GCS, Glasgow Coma Scale criteria cannot be fully evaluated.")
	}
	return warnings
}
