package ports

import (
	"context"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// RecordStream is a lazy iterator over a capture's dissected frames. It must
// never buffer the whole capture in memory: Next blocks until the next frame
// is available, the stream is exhausted, or ctx is cancelled.
type RecordStream interface {
	// Next advances the stream and reports whether a record was produced. A
	// false return with a nil error means the stream is exhausted.
	Next(ctx context.Context) (domain.CaptureRecord, bool, error)

	// Close releases the underlying process and any open file handles.
	Close() error
}

// Dissector turns a capture file on disk into a stream of normalized 802.11
// frame records. Implementations shell out to an external capture-analysis
// tool; Run must respect ctx cancellation and the caller's time budget.
type Dissector interface {
	Run(ctx context.Context, capturePath string) (RecordStream, error)

	// TotalFrameCount reports every frame in the capture, including any that
	// are not 802.11 (wlan_packets counts only what Run streams).
	TotalFrameCount(ctx context.Context, capturePath string) (int, error)
}
