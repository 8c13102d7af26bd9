package ports

import (
	"context"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// DeviceClassifier resolves a client MAC address, the capture's filename,
// and any caller-supplied hints into a DeviceInfo. Implementations combine an
// OUI vendor lookup with heuristic category and virtualization detection.
type DeviceClassifier interface {
	Classify(ctx context.Context, mac string, filename string, hints domain.UserHints) (domain.DeviceInfo, error)
}
