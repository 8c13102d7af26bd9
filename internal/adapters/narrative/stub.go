// Package narrative provides the NarrativeGenerator port's concrete
// adapters. The LLM call itself is out of scope here — the model tiering
// and prompt construction (backend/src/core/llm_provider.py's ModelTier
// routing) belong to the external service this adapter would call; this
// package only defines the contract boundary and its safe fallback.
package narrative

import (
	"context"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
)

// Disabled implements ports.NarrativeGenerator by always reporting
// unavailability. The assembler treats that as non-fatal: analysis_text
// is left empty and the artifact is still written.
type Disabled struct{}

// Generate always returns ErrLLMUnavailable.
func (Disabled) Generate(ctx context.Context, analysis *domain.BandSteeringAnalysis) (string, error) {
	return "", domain.ErrLLMUnavailable
}

var _ ports.NarrativeGenerator = Disabled{}

// Templated implements ports.NarrativeGenerator with a deterministic,
// offline summary built from the verdict and check results, for
// deployments that want non-empty analysis_text without wiring an LLM.
type Templated struct{}

// Generate renders a short templated narrative from the finished artifact.
func (Templated) Generate(ctx context.Context, analysis *domain.BandSteeringAnalysis) (string, error) {
	if analysis == nil {
		return "", domain.ErrLLMUnavailable
	}

	switch analysis.Verdict {
	case domain.VerdictSuccess:
		return "Band steering behaved as expected: the client transitioned cleanly with no forced disconnects.", nil
	case domain.VerdictPartial:
		return "Band steering partially worked: some transitions occurred but compliance checks flagged gaps.", nil
	case domain.VerdictFailed:
		return "Band steering failed: the capture shows no effective steering or a forced disconnect ahead of reassociation.", nil
	default:
		return "", domain.ErrLLMUnavailable
	}
}

var _ ports.NarrativeGenerator = Templated{}
