package narrative

import (
	"context"
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDisabledAlwaysReportsUnavailable(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), &domain.BandSteeringAnalysis{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestTemplatedVariesByVerdict(t *testing.T) {
	success, err := Templated{}.Generate(context.Background(), &domain.BandSteeringAnalysis{Verdict: domain.VerdictSuccess})
	assert.NoError(t, err)
	assert.NotEmpty(t, success)

	failed, err := Templated{}.Generate(context.Background(), &domain.BandSteeringAnalysis{Verdict: domain.VerdictFailed})
	assert.NoError(t, err)
	assert.NotEqual(t, success, failed)
}
