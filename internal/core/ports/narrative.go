package ports

import (
	"context"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// NarrativeGenerator turns a finished analysis into the human-readable
// analysis_text summary. Implementations may call an LLM; callers must
// tolerate ErrLLMUnavailable and fall back to an empty or templated string
// rather than failing the whole analysis.
type NarrativeGenerator interface {
	Generate(ctx context.Context, analysis *domain.BandSteeringAnalysis) (string, error)
}
