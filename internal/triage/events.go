package triage

// EventType discriminates the pipeline's wire events.
type EventType string

const (
	EventPhase         EventType = "phase"
	EventExtraction    EventType = "extraction"
	EventDeterministic EventType = "deterministic"
	EventLLMEvaluation EventType = "llm_evaluation"
	EventResult        EventType = "result"
	EventError         EventType = "error"
)

// Phase names a pipeline state. Phases advance strictly forward.
type Phase string

const (
	PhaseExtracting         Phase = "extracting"
	PhaseEvaluatingVitals   Phase = "evaluating_vitals"
	PhaseAnalyzingMechanism Phase = "analyzing_mechanism"
	PhaseComplete           Phase = "complete"
)

// Event is one record of the pipeline's ordered output stream. It is a
// tagged union over Type; each variant struct marshals to the wire shape
// directly.
type Event interface {
	Kind() EventType
}

// PhaseEvent announces a state transition.
type PhaseEvent struct {
	Type  EventType `json:"type"`
	Phase Phase     `json:"phase"`
}

// ExtractionEvent carries the extracted fields plus advisory plausibility
// warnings.
type ExtractionEvent struct {
	Type     EventType             `json:"type"`
	Data     ExtractedFields       `json:"data"`
	Warnings []PlausibilityWarning `json:"warnings"`
}

// DeterministicEvent carries the numeric-rule matches.
type DeterministicEvent struct {
	Type    EventType        `json:"type"`
	Matches []CriterionMatch `json:"matches"`
}

// LLMEvaluationEvent carries the semantic matches and the evaluator's
// reasoning narrative.
type LLMEvaluationEvent struct {
	Type      EventType        `json:"type"`
	Matches   []CriterionMatch `json:"matches"`
	Reasoning string           `json:"reasoning"`
}

// ResultEvent is the terminal payload of a successful run.
type ResultEvent struct {
	Type EventType        `json:"type"`
	Data EvaluationResult `json:"data"`
}

// ErrorEvent reports a boundary failure. CanRetry distinguishes transient
// vendor errors from input-shape problems.
type ErrorEvent struct {
	Type     EventType `json:"type"`
	Message  string    `json:"message"`
	Phase    string    `json:"phase"`
	CanRetry bool      `json:"canRetry"`
}

func (PhaseEvent) Kind() EventType         { return EventPhase }
func (ExtractionEvent) Kind() EventType    { return EventExtraction }
func (DeterministicEvent) Kind() EventType { return EventDeterministic }
func (LLMEvaluationEvent) Kind() EventType { return EventLLMEvaluation }
func (ResultEvent) Kind() EventType        { return EventResult }
func (ErrorEvent) Kind() EventType         { return EventError }

func newPhaseEvent(p Phase) PhaseEvent {
	return PhaseEvent{Type: EventPhase, Phase: p}
}

func newExtractionEvent(fields ExtractedFields, warnings []PlausibilityWarning) ExtractionEvent {
	if warnings == nil {
		warnings = []PlausibilityWarning{}
	}
	return ExtractionEvent{Type: EventExtraction, Data: fields, Warnings: warnings}
}

func newDeterministicEvent(matches []CriterionMatch) DeterministicEvent {
	if matches == nil {
		matches = []CriterionMatch{}
	}
	return DeterministicEvent{Type: EventDeterministic, Matches: matches}
}

func newLLMEvaluationEvent(matches []CriterionMatch, reasoning string) LLMEvaluationEvent {
	if matches == nil {
		matches = []CriterionMatch{}
	}
	return LLMEvaluationEvent{Type: EventLLMEvaluation, Matches: matches, Reasoning: reasoning}
}

func newResultEvent(result EvaluationResult) ResultEvent {
	return ResultEvent{Type: EventResult, Data: result}
}

func newErrorEvent(message, phase string, canRetry bool) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message, Phase: phase, CanRetry: canRetry}
}
