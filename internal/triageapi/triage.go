package triageapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/acuity/internal/ratelimit"
)

// TriageRequest is the body of POST /api/v1/triage.
type TriageRequest struct {
	Report string `json:"report"`
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if a.limiter != nil {
		if ok, retryAfter := a.limiter.Allow(clientKey(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(retryAfter)))
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
	}

	var req TriageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	report := strings.TrimSpace(req.Report)
	if report == "" {
		http.Error(w, `{"error":"report text is required"}`, http.StatusBadRequest)
		return
	}
	if len(report) > MaxReportChars {
		http.Error(w, `{"error":"report text exceeds maximum length"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.logger.Info(ctx, "response writer does not support streaming")
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("acuity.report.chars", len(report)))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := a.pipeline.Run(ctx, report)
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			a.logger.Error(ctx, err, "failed to marshal pipeline event", "event", ev.Kind())
			continue
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}
