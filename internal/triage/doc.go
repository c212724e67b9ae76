// Package triage is the business core of Acuity's trauma report evaluation.
// It defines the extracted-field and match models, the deterministic vital
// evaluator, the plausibility checker, the match merger, the Extractor and
// Evaluator boundary contracts, and the Pipeline that orchestrates one
// report's evaluation into an ordered event stream.
package triage
