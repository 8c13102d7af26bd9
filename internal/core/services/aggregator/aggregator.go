// Package aggregator implements the single pass over a capture's frame
// stream that is the source of truth for every counter downstream
// components refine: protocol/endpoint tallies, per-band
// frame counts, BTM and association stats, the BSSID map, and the
// chronologically ordered steering event list later consumed by the
// steering state machine.
package aggregator

import (
	"sort"
	"strings"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// EventKind is the closed set of steering-relevant event kinds the
// aggregator emits, already direction-resolved into (client, AP).
type EventKind string

const (
	EventBTMRequest      EventKind = "btm_request"
	EventBTMResponse     EventKind = "btm_response"
	EventAssocRequest    EventKind = "assoc_request"
	EventAssocResponse   EventKind = "assoc_response"
	EventReassocRequest  EventKind = "reassoc_request"
	EventReassocResponse EventKind = "reassoc_response"
	EventDeauth          EventKind = "deauth"
	EventDisassoc        EventKind = "disassoc"
)

// SteeringEvent is one direction-resolved, chronologically ordered entry in
// the union the steering state machine (C6) walks.
type SteeringEvent struct {
	Timestamp  float64
	Kind       EventKind
	ClientMAC  string
	APBSSID    string
	BSSID      string
	Band       domain.Band
	Frequency  int
	StatusCode *int
	ReasonCode int
	RSSI       int

	// SA/DA preserve the frame's raw (unresolved) addressing, needed by the
	// deauth classifier downstream which cares who physically sent the
	// frame, not the already-resolved (client, AP) pair.
	SA string
	DA string
}

const topN = 10

// Aggregator accumulates RawStats and the steering event list across one
// capture's frame stream. It is not safe for concurrent use — a capture is
// processed single-threaded.
type Aggregator struct {
	stats domain.RawStats

	protocolCounts  map[string]int
	sourceCounts    map[string]int
	destCounts      map[string]int
	statusCodes     map[int]struct{}
	reasonCodes     map[int]struct{}
	bssids          map[string]*domain.BSSIDInfo
	freqBand        map[int]domain.Band
	macCandidates   map[string]struct{}
	beaconsPerBSSID map[string]int

	events        []SteeringEvent
	signalSamples []domain.SignalSample
}

// New creates an empty Aggregator ready to Process records in timestamp order.
func New() *Aggregator {
	return &Aggregator{
		protocolCounts:  make(map[string]int),
		sourceCounts:    make(map[string]int),
		destCounts:      make(map[string]int),
		statusCodes:     make(map[int]struct{}),
		reasonCodes:     make(map[int]struct{}),
		bssids:          make(map[string]*domain.BSSIDInfo),
		freqBand:        make(map[int]domain.Band),
		macCandidates:   make(map[string]struct{}),
		beaconsPerBSSID: make(map[string]int),
	}
}

// Process folds one capture record into the running aggregates. Records
// must be supplied in non-decreasing timestamp order (the dissector
// guarantees this); ties are broken by arrival order.
func (a *Aggregator) Process(rec domain.CaptureRecord) {
	a.stats.WLANPackets++

	if rec.ProtocolStack != "" {
		a.protocolCounts[rec.ProtocolStack]++
	}
	if rec.SA != "" {
		a.sourceCounts[rec.SA]++
		a.macCandidates[strings.ToLower(rec.SA)] = struct{}{}
	}
	if rec.DA != "" {
		a.destCounts[rec.DA]++
	}

	band := a.memoizedBand(rec)
	a.recordBSSID(rec, band)
	a.recordPerBandCounts(rec, band)

	switch rec.Subtype {
	case domain.SubtypeAssocRequest, domain.SubtypeReassocRequest:
		a.recordAssocRequest(rec)
	case domain.SubtypeAssocResponse, domain.SubtypeReassocResponse:
		a.recordAssocResponse(rec, band)
	case domain.SubtypeDeauth:
		a.stats.DeauthCount++
		a.recordReasonCode(rec)
		a.emitDirectedEvent(rec, band, EventDeauth)
	case domain.SubtypeDisassoc:
		a.stats.DisassocCount++
		a.recordReasonCode(rec)
		a.emitDirectedEvent(rec, band, EventDisassoc)
	case domain.SubtypeAction:
		a.recordAction(rec, band)
	}

	if rec.HasValidRSSI() && band != domain.BandUnknown {
		a.signalSamples = append(a.signalSamples, domain.SignalSample{
			Timestamp: rec.Timestamp,
			RSSI:      rec.RSSI,
			Band:      band,
			SA:        rec.SA,
			DA:        rec.DA,
		})
	}
}

// memoizedBand derives and memoizes the band for rec's frequency, recording
// a FreqBandMismatch diagnostic (I5) the first time a frequency maps to two
// different bands within the capture.
func (a *Aggregator) memoizedBand(rec domain.CaptureRecord) domain.Band {
	if rec.FrequencyMHz == 0 {
		return domain.BandUnknown
	}
	band := domain.BandFromFrequency(rec.FrequencyMHz)
	if existing, ok := a.freqBand[rec.FrequencyMHz]; ok {
		if existing != band {
			a.stats.FreqBandMismatches = append(a.stats.FreqBandMismatches, domain.FreqBandMismatch{
				FrequencyMHz: rec.FrequencyMHz,
				FirstBand:    existing,
				SecondBand:   band,
				BSSID:        rec.BSSID,
			})
		}
		return existing
	}
	a.freqBand[rec.FrequencyMHz] = band
	return band
}

func (a *Aggregator) recordBSSID(rec domain.CaptureRecord, band domain.Band) {
	if rec.BSSID == "" {
		return
	}
	info, ok := a.bssids[rec.BSSID]
	if !ok {
		info = &domain.BSSIDInfo{BSSID: rec.BSSID}
		a.bssids[rec.BSSID] = info
	}
	if band != domain.BandUnknown {
		info.Band = band
	}
	if rec.SSID != "" {
		info.SSID = rec.SSID
	}
	if rec.FrequencyMHz != 0 {
		info.LastFrequency = rec.FrequencyMHz
	}
	if rec.Subtype == domain.SubtypeBeacon {
		a.beaconsPerBSSID[rec.BSSID]++
	}
}

func (a *Aggregator) recordPerBandCounts(rec domain.CaptureRecord, band domain.Band) {
	switch rec.Subtype {
	case domain.SubtypeBeacon:
		if band == domain.Band24GHz {
			a.stats.Beacons24++
		} else if band == domain.Band5GHz {
			a.stats.Beacons5++
		}
	case domain.SubtypeProbeRequest:
		if band == domain.Band24GHz {
			a.stats.ProbeRequests24++
		} else if band == domain.Band5GHz {
			a.stats.ProbeRequests5++
		}
	case domain.SubtypeProbeResponse:
		if band == domain.Band24GHz {
			a.stats.ProbeResponses24++
		} else if band == domain.Band5GHz {
			a.stats.ProbeResponses5++
		}
	case domain.SubtypeData, domain.SubtypeQoSData:
		if band == domain.Band24GHz {
			a.stats.Data24++
		} else if band == domain.Band5GHz {
			a.stats.Data5++
		}
	}
}

func (a *Aggregator) recordAssocRequest(rec domain.CaptureRecord) {
	client := rec.SA
	ap := rec.DA
	a.stats.SteeringAttempts++
	if rec.Subtype == domain.SubtypeAssocRequest {
		a.stats.AssocRequests++
		a.events = append(a.events, a.event(rec, EventAssocRequest, client, ap))
	} else {
		a.stats.ReassocRequests++
		a.events = append(a.events, a.event(rec, EventReassocRequest, client, ap))
	}
}

func (a *Aggregator) recordAssocResponse(rec domain.CaptureRecord, band domain.Band) {
	ap := rec.SA
	if ap == "" {
		ap = rec.BSSID
	}
	client := rec.DA

	status := rec.AssocStatusCode
	if status != nil {
		a.statusCodes[*status] = struct{}{}
		if *status == 0 {
			a.stats.AssocSuccessCount++
		} else {
			a.stats.AssocFailures = append(a.stats.AssocFailures, domain.AssociationFailure{
				Timestamp: rec.Timestamp, BSSID: rec.BSSID, StatusCode: *status,
			})
		}
	}

	var kind EventKind
	if rec.Subtype == domain.SubtypeAssocResponse {
		a.stats.AssocResponses++
		kind = EventAssocResponse
	} else {
		a.stats.ReassocResponses++
		kind = EventReassocResponse
	}
	ev := a.event(rec, kind, client, ap)
	ev.Band = band
	ev.StatusCode = status
	a.events = append(a.events, ev)
}

func (a *Aggregator) recordAction(rec domain.CaptureRecord, band domain.Band) {
	if rec.CategoryCode == domain.CategoryRadioMeasurement {
		a.stats.KVR.K = true
	}
	if rec.CategoryCode != domain.CategoryWNM {
		return
	}
	a.stats.KVR.V = true

	switch rec.ActionCode {
	case domain.ActionBTMRequest:
		a.stats.BTMRequests++
		a.stats.SteeringAttempts++
		ev := a.event(rec, EventBTMRequest, rec.DA, rec.SA)
		ev.Band = band
		a.events = append(a.events, ev)
	case domain.ActionBTMResponse:
		a.stats.BTMResponses++
		status := rec.BTMStatusCode
		if status == nil {
			status = rec.AssocStatusCode
		}
		if status != nil {
			a.stats.BTMStatusCodes = appendDistinct(a.stats.BTMStatusCodes, *status)
			if *status == 0 {
				a.stats.BTMAcceptCount++
			} else {
				a.stats.BTMRejectCount++
			}
		}
		// BTM response direction inverts: client is the sender.
		ev := a.event(rec, EventBTMResponse, rec.SA, rec.DA)
		ev.Band = band
		ev.StatusCode = status
		a.events = append(a.events, ev)
	}
}

func (a *Aggregator) recordReasonCode(rec domain.CaptureRecord) {
	a.reasonCodes[rec.ReasonCode] = struct{}{}
}

// emitDirectedEvent resolves a deauth/disassoc frame's (client, AP) pair per
// the §4.5 direction rule: if SA is a known BSSID the AP is sending to the
// client (client=DA); otherwise the client is sending (client=SA).
func (a *Aggregator) emitDirectedEvent(rec domain.CaptureRecord, band domain.Band, kind EventKind) {
	var client, ap string
	if _, saIsBSSID := a.bssids[rec.SA]; saIsBSSID || rec.SA == rec.BSSID {
		client, ap = rec.DA, rec.SA
	} else {
		client, ap = rec.SA, rec.DA
	}
	ev := a.event(rec, kind, client, ap)
	ev.Band = band
	ev.ReasonCode = rec.ReasonCode
	a.events = append(a.events, ev)
}

func (a *Aggregator) event(rec domain.CaptureRecord, kind EventKind, client, ap string) SteeringEvent {
	return SteeringEvent{
		Timestamp: rec.Timestamp,
		Kind:      kind,
		ClientMAC: client,
		APBSSID:   ap,
		BSSID:     rec.BSSID,
		Frequency: rec.FrequencyMHz,
		RSSI:      rec.RSSI,
		SA:        rec.SA,
		DA:        rec.DA,
	}
}

// Result is the immutable output of a finished aggregation pass.
type Result struct {
	Stats   domain.RawStats
	Events  []SteeringEvent
	BSSIDs  map[string]*domain.BSSIDInfo
	Samples []domain.SignalSample
}

// Finish assigns BSSID roles, computes top-N tables, and returns the
// aggregation result. Call once after the last Process call.
func (a *Aggregator) Finish() Result {
	assignBSSIDRoles(a.bssids)

	a.stats.ProtocolCounts = a.protocolCounts
	a.stats.TopSources = topN2(a.sourceCounts, topN)
	a.stats.TopDestinations = topN2(a.destCounts, topN)
	a.stats.BSSIDs = a.bssids

	for code := range a.reasonCodes {
		a.stats.ReasonCodesSeen = append(a.stats.ReasonCodesSeen, code)
	}
	sort.Ints(a.stats.ReasonCodesSeen)

	candidates := make([]string, 0, len(a.macCandidates))
	for mac := range a.macCandidates {
		candidates = append(candidates, mac)
	}
	sort.Strings(candidates)
	a.stats.AllMACCandidates = candidates

	a.stats.PreventiveSteeringDetected = detectPreventiveSteering(a.stats)

	sort.SliceStable(a.events, func(i, j int) bool {
		return a.events[i].Timestamp < a.events[j].Timestamp
	})

	return Result{Stats: a.stats, Events: a.events, BSSIDs: a.bssids, Samples: a.signalSamples}
}

// BSSIDSet returns the set of BSSIDs seen so far, for use by the primary
// client selector (which must never pick a BSSID as the client).
func (a *Aggregator) BSSIDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.bssids))
	for b := range a.bssids {
		set[strings.ToLower(b)] = struct{}{}
	}
	return set
}

// assignBSSIDRoles sets master (5GHz) / slave (2.4GHz) roles once both bands
// are observed across the BSSID set; a BSSID with only one band observed is
// master by default.
func assignBSSIDRoles(bssids map[string]*domain.BSSIDInfo) {
	saw24, saw5 := false, false
	for _, info := range bssids {
		switch info.Band {
		case domain.Band24GHz:
			saw24 = true
		case domain.Band5GHz:
			saw5 = true
		}
	}
	sawBothBands := saw24 && saw5
	for _, info := range bssids {
		switch info.Band {
		case domain.Band5GHz:
			info.Role = domain.RoleMaster
		case domain.Band24GHz:
			if sawBothBands {
				info.Role = domain.RoleSlave
			} else {
				info.Role = domain.RoleMaster
			}
		default:
			info.Role = domain.RoleMaster
		}
	}
}

// detectPreventiveSteering implements the independent preventive-steering
// heuristic: data traffic concentrated on 5GHz (over 90% of at least 10
// data frames) while 2.4GHz beacons are still observed is a sign of AP-side
// suppression of the 2.4GHz band.
func detectPreventiveSteering(stats domain.RawStats) bool {
	totalData := stats.Data24 + stats.Data5
	if stats.Beacons24 == 0 {
		return false
	}
	if totalData < 10 {
		return false
	}
	return float64(stats.Data5)/float64(totalData) > 0.90
}

func appendDistinct(codes []int, code int) []int {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}

func topN2(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	kvs := make([]kv, 0, len(counts))
	for k, v := range counts {
		kvs = append(kvs, kv{k, v})
	}
	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].count != kvs[j].count {
			return kvs[i].count > kvs[j].count
		}
		return kvs[i].key < kvs[j].key
	})
	if len(kvs) > n {
		kvs = kvs[:n]
	}
	result := make(map[string]int, len(kvs))
	for _, e := range kvs {
		result[e.key] = e.count
	}
	return result
}
