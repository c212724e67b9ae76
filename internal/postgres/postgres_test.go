package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestWrapQueryTracer_StashesMetadata(t *testing.T) {
	t.Parallel()

	tr := wrapQueryTracer(nil).(loggingTracer)

	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "SELECT 1",
	})

	sql, ok := ctx.Value(ctxKeySQL).(string)
	if !ok || sql != "SELECT 1" {
		t.Errorf("stashed sql = %q, want %q", sql, "SELECT 1")
	}
	start, ok := ctx.Value(ctxKeyStart).(time.Time)
	if !ok || start.IsZero() {
		t.Error("expected non-zero start time in context")
	}
}

type recordingTracer struct {
	startCalls int
	endCalls   int
}

func (r *recordingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	r.startCalls++
	return ctx
}

func (r *recordingTracer) TraceQueryEnd(_ context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	r.endCalls++
}

func TestWrapQueryTracer_DelegatesToInner(t *testing.T) {
	t.Parallel()

	inner := &recordingTracer{}
	tr := wrapQueryTracer(inner)

	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tr.(loggingTracer).TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	if inner.startCalls != 1 {
		t.Errorf("inner start calls = %d, want 1", inner.startCalls)
	}
	if inner.endCalls != 1 {
		t.Errorf("inner end calls = %d, want 1", inner.endCalls)
	}
}

func TestNewPool_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewPool(context.Background(), "not a url \x00")
	if err == nil {
		t.Fatal("expected error for invalid database url")
	}
}
