package compliance

import (
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvaluateScenarioA mirrors the clean-assisted-steering scenario: one
// assisted band-change transition plus a BTM accept is enough for Check 3's
// rule (b), so the verdict is SUCCESS.
func TestEvaluateScenarioA(t *testing.T) {
	stats := domain.RawStats{
		BTMRequests: 1, BTMResponses: 1, BTMAcceptCount: 1,
		AssocResponses: 0, ReassocResponses: 1,
	}
	transitions := []domain.SteeringTransition{
		{Kind: domain.SteeringAssisted, IsBandChange: true, IsSuccessful: true},
	}

	checks, verdict := Evaluate(stats, transitions, 0)

	require.Len(t, checks, 4)
	assert.True(t, checks[0].Passed, "BTM support should pass")
	assert.True(t, checks[1].Passed, "association check should pass")
	assert.True(t, checks[2].Passed, "effective steering should pass via rule b")
	assert.Equal(t, domain.VerdictSuccess, verdict)
}

// TestEvaluateScenarioB mirrors aggressive deauth then reassoc: a
// forced-to-client deauth fails Check 2 outright regardless of Check 3.
func TestEvaluateScenarioB(t *testing.T) {
	stats := domain.RawStats{DeauthCount: 1, ReassocResponses: 1}
	transitions := []domain.SteeringTransition{
		{Kind: domain.SteeringAggressive, IsBandChange: true, IsSuccessful: true},
	}

	checks, verdict := Evaluate(stats, transitions, 1)

	assert.False(t, checks[1].Passed)
	assert.Equal(t, domain.VerdictFailed, verdict)
}

// TestEvaluateScenarioCBroadcastDeauthNotSteering: broadcast deauth is never
// forced-to-client, and with no band change the verdict is FAILED.
func TestEvaluateScenarioCBroadcastDeauthNotSteering(t *testing.T) {
	stats := domain.RawStats{DeauthCount: 1, AssocResponses: 1}
	transitions := []domain.SteeringTransition{
		{Kind: domain.SteeringUnknown, IsBandChange: false, IsSuccessful: true},
	}

	checks, verdict := Evaluate(stats, transitions, 0)

	assert.True(t, checks[1].Passed)
	assert.False(t, checks[2].Passed)
	assert.Equal(t, domain.VerdictFailed, verdict)
}

// TestEvaluateScenarioDBTMAcceptNoBandChange: a BTM accept with no physical
// movement at all (no transitions) still earns PARTIAL via the dedicated
// priority-5 verdict rule.
func TestEvaluateScenarioDBTMAcceptNoBandChange(t *testing.T) {
	stats := domain.RawStats{BTMRequests: 1, BTMResponses: 1, BTMAcceptCount: 1}

	checks, verdict := Evaluate(stats, nil, 0)

	assert.True(t, checks[0].Passed)
	assert.False(t, checks[2].Passed)
	assert.Equal(t, domain.VerdictPartial, verdict)
}

// TestEvaluateScenarioEPreventiveSteering: no transitions and no BTM traffic,
// but the preventive flag alone forces SUCCESS (priority step 6).
func TestEvaluateScenarioEPreventiveSteering(t *testing.T) {
	stats := domain.RawStats{
		Beacons24: 120, Beacons5: 120, Data24: 3, Data5: 97,
		PreventiveSteeringDetected: true,
	}

	checks, verdict := Evaluate(stats, nil, 0)

	assert.False(t, checks[2].Passed)
	assert.Equal(t, domain.VerdictSuccess, verdict)
}

func TestCheckBTMSupportFailsWhenNoTrafficObserved(t *testing.T) {
	check := checkBTMSupport(domain.RawStats{})
	assert.False(t, check.Passed)
	assert.Equal(t, "BTM not observed", check.Details)
}

func TestCheckBTMSupportFailsWhenRequestedButNoReply(t *testing.T) {
	check := checkBTMSupport(domain.RawStats{BTMRequests: 2})
	assert.False(t, check.Passed)
	assert.Equal(t, "BTM requested but client did not reply", check.Details)
}

func TestCheckKVRStandardsPassesOnAnyFlag(t *testing.T) {
	check := checkKVRStandards(domain.KVRSupport{V: true})
	assert.True(t, check.Passed)
}

func TestCheckAssociationFailsOnExplicitAssocFailure(t *testing.T) {
	stats := domain.RawStats{
		AssocResponses: 1,
		AssocFailures:  []domain.AssociationFailure{{StatusCode: 17}},
	}
	check := checkAssociation(stats, 0)
	assert.False(t, check.Passed)
}
