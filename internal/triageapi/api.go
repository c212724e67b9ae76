// Package triageapi exposes the triage pipeline and the read-only criteria
// reference data over HTTP. The triage endpoint streams pipeline events as
// server-sent events, one JSON object per event.
package triageapi

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/acuity/internal/criteria"
	"github.com/linnemanlabs/acuity/internal/ratelimit"
	"github.com/linnemanlabs/acuity/internal/triage"
)

// MaxReportChars bounds accepted report text.
const MaxReportChars = 50000

// PipelineRunner is the evaluation operation the API needs.
type PipelineRunner interface {
	Run(ctx context.Context, report string) <-chan triage.Event
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger   log.Logger
	pipeline PipelineRunner
	criteria *criteria.Set
	limiter  *ratelimit.Limiter
}

// New creates a new API handler. The limiter is optional.
func New(logger log.Logger, pipeline PipelineRunner, set *criteria.Set, limiter *ratelimit.Limiter) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if pipeline == nil {
		panic(xerrors.New("pipeline is required"))
	}
	if set == nil {
		panic(xerrors.New("criteria set is required"))
	}
	return &API{
		logger:   logger,
		pipeline: pipeline,
		criteria: set,
		limiter:  limiter,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", a.handleTriage)
		r.Get("/criteria", a.handleListCriteria)
		r.Get("/criteria/{id}", a.handleGetCriterion)
	})
}

// clientKey resolves the rate-limit key for a request.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
