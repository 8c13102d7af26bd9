// Package worker implements the bounded-concurrency analysis scheduler:
// each capture is analyzed by a single worker that owns its own dissector
// subprocess, while the pool as a whole never runs more than maxConcurrency
// analyses at once.
package worker

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/services/analysis"
	"github.com/steeraudit/bandsteer/internal/telemetry"
)

// errorKind reduces an analysis error down to the coarse label the
// analyses_failed_total metric is keyed by.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrDissectorUnavailable):
		return "dissector_unavailable"
	case errors.Is(err, domain.ErrDissectorTimeout):
		return "dissector_timeout"
	case errors.Is(err, domain.ErrInvalidCapture):
		return "invalid_capture"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		var dissectErr *domain.DissectorError
		var persistErr *domain.PersistenceError
		switch {
		case errors.As(err, &dissectErr):
			return "dissector_error"
		case errors.As(err, &persistErr):
			return "persistence_error"
		default:
			return "unknown"
		}
	}
}

// Pool bounds how many analyses run concurrently. Each Submit call blocks
// until a slot is free, runs the analysis, then releases its slot —
// cancellation only takes effect at the dissector subprocess boundary
// C1 already enforces, never mid-aggregation.
type Pool struct {
	assembler *analysis.Assembler
	sem       *semaphore.Weighted
}

// New builds a worker pool that runs at most maxConcurrency analyses at
// once; deployments typically run at least 2 so one slow capture doesn't
// stall the whole queue.
func New(assembler *analysis.Assembler, maxConcurrency int) *Pool {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Pool{assembler: assembler, sem: semaphore.NewWeighted(int64(maxConcurrency))}
}

// Submit runs one analysis once a slot is free, blocking the caller until
// either the analysis completes or ctx is cancelled while still queued.
func (p *Pool) Submit(ctx context.Context, req analysis.Request) (*domain.BandSteeringAnalysis, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	telemetry.WorkerPoolInFlight.WithLabelValues().Inc()
	defer telemetry.WorkerPoolInFlight.WithLabelValues().Dec()

	telemetry.AnalysesStarted.WithLabelValues().Inc()
	result, err := p.assembler.Analyze(ctx, req)
	if err != nil {
		telemetry.AnalysesFailed.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}
	telemetry.AnalysesCompleted.WithLabelValues(string(result.Verdict)).Inc()
	return result, nil
}

// SubmitBatch runs every request, respecting the pool's concurrency bound,
// and returns results in the same order as the input. A single failure
// doesn't cancel sibling analyses already in flight.
func (p *Pool) SubmitBatch(ctx context.Context, reqs []analysis.Request) ([]*domain.BandSteeringAnalysis, []error) {
	results := make([]*domain.BandSteeringAnalysis, len(reqs))
	errs := make([]error, len(reqs))

	done := make(chan int, len(reqs))
	for i, req := range reqs {
		go func(i int, req analysis.Request) {
			results[i], errs[i] = p.Submit(ctx, req)
			done <- i
		}(i, req)
	}
	for range reqs {
		<-done
	}
	return results, errs
}
