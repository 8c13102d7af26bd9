// Package steering walks the chronologically ordered steering-event union
// produced by the frame-stream aggregator (C5) and classifies each
// successful roam into a SteeringTransition. It never mutates
// the events it reads; transitions are a new, derived collection.
package steering

import (
	"sort"
	"strings"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/services/aggregator"
	"github.com/steeraudit/bandsteer/internal/core/services/deauth"
)

// ReassocTimeoutSeconds bounds how long a remembered forced-deauth or BTM
// request stays eligible as the cause of a later successful reassociation.
const ReassocTimeoutSeconds = 15.0

// ForcedToClientCount classifies every deauth/disassoc event against a
// single client MAC and counts how many C3 attributes as forced_to_client —
// the input the Association and Reassociation compliance check needs.
func ForcedToClientCount(events []aggregator.SteeringEvent, clientMAC string) int {
	count := 0
	for _, ev := range events {
		if ev.Kind != aggregator.EventDeauth && ev.Kind != aggregator.EventDisassoc {
			continue
		}
		rec := domain.CaptureRecord{SA: ev.SA, DA: ev.DA, ReasonCode: ev.ReasonCode}
		if deauth.Classify(rec, clientMAC) == domain.DeauthForcedToClient {
			count++
		}
	}
	return count
}

// startNode is the event the state machine attributes a transition's origin
// to: either a remembered forced deauth, a remembered BTM request, or — for
// a spontaneous/initial roam — the client's last known association.
type startNode struct {
	bssid     string
	band      domain.Band
	timestamp float64
	valid     bool
}

type clientState struct {
	lastDeauth *aggregator.SteeringEvent
	lastBTMReq *aggregator.SteeringEvent

	current     string
	currentBand domain.Band
	beforeLast  string
	haveHome    bool
}

// Result bundles the derived transitions with the count of deauth/disassoc
// frames C3 classified as forced-to-client — the input Check 2 needs but
// RawStats alone (reason codes with no direction) cannot supply.
type Result struct {
	Transitions         []domain.SteeringTransition
	ForcedToClientCount int
}

// Run groups events by client MAC (BSSIDs never become a client key),
// evaluates each client's sweep independently, and returns every transition
// across all clients in chronological order.
func Run(events []aggregator.SteeringEvent) Result {
	bssids := make(map[string]struct{})
	for _, ev := range events {
		if ev.BSSID != "" {
			bssids[strings.ToLower(ev.BSSID)] = struct{}{}
		}
	}

	grouped := make(map[string][]aggregator.SteeringEvent)
	var order []string
	for _, ev := range events {
		client := strings.ToLower(ev.ClientMAC)
		if client == "" {
			continue
		}
		if _, isBSSID := bssids[client]; isBSSID {
			continue
		}
		if _, seen := grouped[client]; !seen {
			order = append(order, client)
		}
		grouped[client] = append(grouped[client], ev)
	}
	sort.Strings(order)

	var all []domain.SteeringTransition
	forced := 0
	for _, client := range order {
		transitions, clientForced := runClient(client, grouped[client])
		all = append(all, transitions...)
		forced += clientForced
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTime < all[j].StartTime })
	return Result{Transitions: all, ForcedToClientCount: forced}
}

func runClient(client string, events []aggregator.SteeringEvent) ([]domain.SteeringTransition, int) {
	state := &clientState{}
	var transitions []domain.SteeringTransition
	forced := 0

	for _, ev := range events {
		switch ev.Kind {
		case aggregator.EventBTMRequest:
			e := ev
			state.lastBTMReq = &e

		case aggregator.EventDeauth, aggregator.EventDisassoc:
			rec := domain.CaptureRecord{SA: ev.SA, DA: ev.DA, ReasonCode: ev.ReasonCode}
			if deauth.Classify(rec, client) == domain.DeauthForcedToClient {
				forced++
				e := ev
				state.lastDeauth = &e
			}

		case aggregator.EventAssocResponse, aggregator.EventReassocResponse:
			if ev.StatusCode == nil || *ev.StatusCode != 0 {
				continue
			}
			t := buildTransition(client, ev, state)
			transitions = append(transitions, t)

			state.lastDeauth = nil
			state.beforeLast = state.current
			state.current = ev.APBSSID
			state.currentBand = ev.Band
			state.haveHome = true
		}
	}

	forceBandChangeOnConsecutive(transitions)
	return transitions, forced
}

// buildTransition classifies one successful reassociation per the §4.6
// priority order and fills in the resulting transition's derived fields.
func buildTransition(client string, ev aggregator.SteeringEvent, state *clientState) domain.SteeringTransition {
	var kind domain.SteeringKind
	var start startNode

	switch {
	case state.lastDeauth != nil && ev.Timestamp-state.lastDeauth.Timestamp < ReassocTimeoutSeconds:
		kind = domain.SteeringAggressive
		start = startNode{bssid: state.lastDeauth.APBSSID, band: state.lastDeauth.Band, timestamp: state.lastDeauth.Timestamp, valid: true}
	case state.lastBTMReq != nil && ev.Timestamp-state.lastBTMReq.Timestamp < ReassocTimeoutSeconds:
		kind = domain.SteeringAssisted
		start = startNode{bssid: state.lastBTMReq.APBSSID, band: state.lastBTMReq.Band, timestamp: state.lastBTMReq.Timestamp, valid: true}
	default:
		kind = domain.SteeringUnknown
		if state.haveHome {
			start = startNode{bssid: state.current, band: state.currentBand, timestamp: ev.Timestamp, valid: true}
		}
	}

	startTime := ev.Timestamp
	if start.valid {
		startTime = start.timestamp
	}

	reason := reasonCodeFor(kind, state)

	returnedToOriginal := state.haveHome && strings.EqualFold(ev.APBSSID, state.beforeLast) && state.beforeLast != ""

	return domain.SteeringTransition{
		ClientMAC:          client,
		Kind:               kind,
		StartTime:          startTime,
		EndTime:            ev.Timestamp,
		Duration:           ev.Timestamp - startTime,
		FromBSSID:          start.bssid,
		ToBSSID:            ev.APBSSID,
		FromBand:           start.band,
		ToBand:             ev.Band,
		IsBandChange:       start.band != domain.BandUnknown && ev.Band != domain.BandUnknown && start.band != ev.Band,
		IsSuccessful:       true,
		ReasonCode:         reason,
		ReturnedToOriginal: returnedToOriginal,
	}
}

func reasonCodeFor(kind domain.SteeringKind, state *clientState) *int {
	if kind != domain.SteeringAggressive || state.lastDeauth == nil {
		return nil
	}
	rc := state.lastDeauth.ReasonCode
	return &rc
}

// forceBandChangeOnConsecutive walks a single client's transitions in time
// order and forces is_band_change on any transition whose band differs from
// the one immediately before it, even when the transition's own from/to
// bands didn't individually indicate a change.
func forceBandChangeOnConsecutive(transitions []domain.SteeringTransition) {
	for i := 1; i < len(transitions); i++ {
		prev := transitions[i-1]
		cur := transitions[i]
		if prev.ToBand != domain.BandUnknown && cur.ToBand != domain.BandUnknown && prev.ToBand != cur.ToBand {
			transitions[i].IsBandChange = true
		}
	}
}
