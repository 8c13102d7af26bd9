package steering

import (
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/services/aggregator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(v int) *int { return &v }

func TestRunAssistedSteeringViaBTMRequest(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventBTMRequest, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", Band: domain.Band5GHz},
		{Timestamp: 0.4, Kind: aggregator.EventReassocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "bb:bb:bb:bb:bb:bb", Band: domain.Band24GHz, StatusCode: statusPtr(0)},
	}

	result := Run(events)
	transitions := result.Transitions

	require.Len(t, transitions, 1)
	tr := transitions[0]
	assert.Equal(t, domain.SteeringAssisted, tr.Kind)
	assert.Equal(t, "aa:aa:aa:aa:aa:aa", tr.FromBSSID)
	assert.Equal(t, "bb:bb:bb:bb:bb:bb", tr.ToBSSID)
	assert.True(t, tr.IsBandChange)
	assert.InDelta(t, 0.4, tr.Duration, 0.0001)
}

func TestRunAggressiveSteeringViaForcedDeauth(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventDeauth, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", Band: domain.Band24GHz,
			SA: "aa:aa:aa:aa:aa:aa", DA: "11:22:33:44:55:66", ReasonCode: 1},
		{Timestamp: 0.3, Kind: aggregator.EventAssocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "bb:bb:bb:bb:bb:bb", Band: domain.Band5GHz, StatusCode: statusPtr(0)},
	}

	result := Run(events)
	transitions := result.Transitions

	require.Len(t, transitions, 1)
	assert.Equal(t, domain.SteeringAggressive, transitions[0].Kind)
	require.NotNil(t, transitions[0].ReasonCode)
	assert.Equal(t, 1, *transitions[0].ReasonCode)
}

func TestRunGracefulDeauthDoesNotCauseAggressive(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventDeauth, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", Band: domain.Band24GHz,
			SA: "11:22:33:44:55:66", DA: "aa:aa:aa:aa:aa:aa", ReasonCode: 3},
		{Timestamp: 0.3, Kind: aggregator.EventAssocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "bb:bb:bb:bb:bb:bb", Band: domain.Band5GHz, StatusCode: statusPtr(0)},
	}

	result := Run(events)
	transitions := result.Transitions

	require.Len(t, transitions, 1)
	assert.Equal(t, domain.SteeringUnknown, transitions[0].Kind)
}

func TestRunSpontaneousRoamIsUnknown(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventAssocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", Band: domain.Band5GHz, StatusCode: statusPtr(0)},
		{Timestamp: 50, Kind: aggregator.EventReassocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "bb:bb:bb:bb:bb:bb", Band: domain.Band24GHz, StatusCode: statusPtr(0)},
	}

	result := Run(events)
	transitions := result.Transitions

	require.Len(t, transitions, 2)
	assert.Equal(t, domain.SteeringUnknown, transitions[1].Kind)
	assert.Equal(t, "aa:aa:aa:aa:aa:aa", transitions[1].FromBSSID)
}

func TestRunDetectsLoopReturnToOriginal(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventAssocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", Band: domain.Band5GHz, StatusCode: statusPtr(0)},
		{Timestamp: 1, Kind: aggregator.EventReassocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "bb:bb:bb:bb:bb:bb", Band: domain.Band24GHz, StatusCode: statusPtr(0)},
		{Timestamp: 2, Kind: aggregator.EventReassocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", Band: domain.Band5GHz, StatusCode: statusPtr(0)},
	}

	result := Run(events)
	transitions := result.Transitions

	require.Len(t, transitions, 3)
	assert.True(t, transitions[2].ReturnedToOriginal)
	assert.False(t, transitions[1].ReturnedToOriginal)
}

func TestRunExcludesBSSIDFromClientKey(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventAssocResponse, ClientMAC: "aa:aa:aa:aa:aa:aa", APBSSID: "bb:bb:bb:bb:bb:bb", BSSID: "aa:aa:aa:aa:aa:aa", StatusCode: statusPtr(0)},
	}

	result := Run(events)
	transitions := result.Transitions
	assert.Empty(t, transitions)
}

func TestRunFailedResponseProducesNoTransition(t *testing.T) {
	events := []aggregator.SteeringEvent{
		{Timestamp: 0, Kind: aggregator.EventAssocResponse, ClientMAC: "11:22:33:44:55:66", APBSSID: "aa:aa:aa:aa:aa:aa", StatusCode: statusPtr(17)},
	}

	result := Run(events)
	transitions := result.Transitions
	assert.Empty(t, transitions)
}
