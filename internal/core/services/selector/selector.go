// Package selector picks the single client MAC a capture's analysis is
// about, from either a user-supplied hint or weighted evidence gathered
// while scanning the frame stream.
package selector

import (
	"net"
	"strings"
)

// Weights applied per occurrence when scoring a MAC as the likely primary
// client.
const (
	WeightBTMResponse  = 8
	WeightAssocRequest = 5
	WeightRSSISample   = 2
	WeightOther        = 1
)

// Evidence accumulates per-MAC scores across a single pass over the frame
// stream; call the Observe* methods as records are processed, then Select.
type Evidence struct {
	scores  map[string]int
	bssids  map[string]struct{}
}

// NewEvidence creates an empty evidence accumulator for the given BSSID set;
// BSSIDs are never eligible as the primary client.
func NewEvidence(bssids map[string]struct{}) *Evidence {
	return &Evidence{scores: make(map[string]int), bssids: bssids}
}

func normalize(mac string) string { return strings.ToLower(strings.TrimSpace(mac)) }

func (e *Evidence) add(mac string, weight int) {
	mac = normalize(mac)
	if mac == "" {
		return
	}
	if _, isBSSID := e.bssids[mac]; isBSSID {
		return
	}
	e.scores[mac] += weight
}

// ObserveBTMResponse records a BTM response whose client_mac field matches mac.
func (e *Evidence) ObserveBTMResponse(mac string) { e.add(mac, WeightBTMResponse) }

// ObserveAssocRequest records an association/reassociation request's source address.
func (e *Evidence) ObserveAssocRequest(mac string) { e.add(mac, WeightAssocRequest) }

// ObserveRSSISample records a frame's source address with a valid RSSI sample.
func (e *Evidence) ObserveRSSISample(mac string) { e.add(mac, WeightRSSISample) }

// ObserveOther records any other appearance of a MAC in the stream.
func (e *Evidence) ObserveOther(mac string) { e.add(mac, WeightOther) }

// ObserveOtherN records n other appearances of a MAC at once, e.g. when
// folding in a pre-aggregated per-MAC frame count.
func (e *Evidence) ObserveOtherN(mac string, n int) { e.add(mac, WeightOther*n) }

// SelectionResult is the outcome of Select.
type SelectionResult struct {
	ClientMAC      string
	HintBSSIDWarning bool
}

// Select returns the primary client MAC. A valid unicast hint that isn't a
// known BSSID wins unconditionally. A hint that collides with a known BSSID
// still wins (user intent is respected) but is flagged with a warning. With
// no usable hint, the MAC with the highest accumulated score wins; ties
// break on the lexically smallest MAC for determinism.
func (e *Evidence) Select(hint string) SelectionResult {
	h := normalize(hint)
	if h != "" && isValidUnicastMAC(h) {
		_, isBSSID := e.bssids[h]
		return SelectionResult{ClientMAC: h, HintBSSIDWarning: isBSSID}
	}

	best := ""
	bestScore := -1
	for mac, score := range e.scores {
		if score > bestScore || (score == bestScore && mac < best) {
			best = mac
			bestScore = score
		}
	}
	return SelectionResult{ClientMAC: best}
}

func isValidUnicastMAC(mac string) bool {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) == 0 {
		return false
	}
	return hw[0]&0x01 == 0
}
