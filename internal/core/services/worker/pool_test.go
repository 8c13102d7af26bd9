package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
	"github.com/steeraudit/bandsteer/internal/core/services/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingStream struct {
	owner *blockingDissector
	sent  bool
}

func (s *blockingStream) Next(ctx context.Context) (domain.CaptureRecord, bool, error) {
	if s.sent {
		return domain.CaptureRecord{}, false, nil
	}
	n := s.owner.inFlight.Add(1)
	for {
		max := s.owner.maxInFlight.Load()
		if n <= max || s.owner.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	<-s.owner.release
	s.owner.inFlight.Add(-1)
	s.sent = true
	return domain.CaptureRecord{}, false, nil
}
func (s *blockingStream) Close() error { return nil }

type blockingDissector struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	release     chan struct{}
}

func (d *blockingDissector) Run(ctx context.Context, capturePath string) (ports.RecordStream, error) {
	return &blockingStream{owner: d}, nil
}

func (d *blockingDissector) TotalFrameCount(ctx context.Context, capturePath string) (int, error) {
	return 0, nil
}

type noopClassifier struct{}

func (noopClassifier) Classify(ctx context.Context, mac, filename string, hints domain.UserHints) (domain.DeviceInfo, error) {
	return domain.DeviceInfo{MAC: mac}, nil
}

type noopStore struct{}

func (noopStore) Save(ctx context.Context, a *domain.BandSteeringAnalysis) (string, error) {
	return "noop", nil
}
func (noopStore) Load(ctx context.Context, id string) (*domain.BandSteeringAnalysis, error) {
	return nil, domain.ErrAnalysisNotFound
}
func (noopStore) Delete(ctx context.Context, id string) error { return nil }

func TestPoolBoundsConcurrency(t *testing.T) {
	release := make(chan struct{})
	dissector := &blockingDissector{release: release}
	asm := analysis.New(dissector, noopClassifier{}, noopStore{}, nil, nil)
	pool := New(asm, 2)

	const jobs = 5
	reqs := make([]analysis.Request, jobs)
	for i := range reqs {
		reqs[i] = analysis.Request{CapturePath: "/tmp/capture.pcapng"}
	}

	resultsCh := make(chan struct{})
	go func() {
		pool.SubmitBatch(context.Background(), reqs)
		close(resultsCh)
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case <-resultsCh:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not complete in time")
	}

	assert.LessOrEqual(t, dissector.maxInFlight.Load(), int32(2))
}

func TestSubmitReturnsAnalysisResult(t *testing.T) {
	release := make(chan struct{})
	close(release)
	dissector := &blockingDissector{release: release}
	asm := analysis.New(dissector, noopClassifier{}, noopStore{}, nil, nil)
	pool := New(asm, 2)

	result, err := pool.Submit(context.Background(), analysis.Request{CapturePath: "/tmp/capture.pcapng"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AnalysisID)
}
