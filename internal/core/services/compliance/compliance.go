// Package compliance runs the four fixed band-steering compliance checks
// and derives the overall verdict. The evaluator never
// raises on a noisy or inconclusive capture: every check always produces an
// entry, failing safe toward a conservative verdict instead.
package compliance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

func strPtr(s string) *string { return &s }

// Evaluate runs the four checks in order and derives the verdict from their
// outcomes together with the transitions and raw BTM counters.
// forcedToClientCount is the number of deauth/disassoc frames the deauth
// classifier (C3) attributed to the primary client specifically — RawStats'
// reason-code list alone carries no direction information.
func Evaluate(stats domain.RawStats, transitions []domain.SteeringTransition, forcedToClientCount int) ([]domain.ComplianceCheck, domain.Verdict) {
	checks := []domain.ComplianceCheck{
		checkBTMSupport(stats),
		checkAssociation(stats, forcedToClientCount),
		checkEffectiveSteering(stats, transitions),
		checkKVRStandards(stats.KVR),
	}
	return checks, deriveVerdict(checks, stats, transitions)
}

// checkBTMSupport is Check 1 — 802.11v BSS Transition Management.
func checkBTMSupport(stats domain.RawStats) domain.ComplianceCheck {
	check := domain.ComplianceCheck{Name: "BTM Support (802.11v)", Category: domain.CategoryBTM, Severity: domain.SeverityHigh}

	if stats.BTMRequests == 0 && stats.BTMResponses == 0 {
		check.Passed = false
		check.Details = "BTM not observed"
		check.Recommendation = strPtr("Confirm the AP advertises and issues 802.11v BSS Transition Management requests.")
		return check
	}
	if stats.BTMRequests > 0 && stats.BTMResponses == 0 {
		check.Passed = false
		check.Details = "BTM requested but client did not reply"
		check.Recommendation = strPtr("Verify the client supports 802.11v; capture a longer window to confirm a response never arrives.")
		return check
	}

	check.Passed = stats.BTMAcceptCount > 0
	check.Details = fmt.Sprintf("status codes observed: %s", describeStatusCodes(stats.BTMStatusCodes))
	if !check.Passed {
		check.Details = "responses without Accept"
		check.Recommendation = strPtr("Investigate why the client rejects every BSS Transition Management request.")
	}
	return check
}

// checkAssociation is Check 2 — Association and Reassociation.
func checkAssociation(stats domain.RawStats, forcedCount int) domain.ComplianceCheck {
	check := domain.ComplianceCheck{Name: "Association and Reassociation", Category: domain.CategoryAssociation, Severity: domain.SeverityHigh}

	// A BTM Accept counts as a completed cycle too: a capture can show the
	// client steered purely over 802.11v without an in-window reassociation.
	handshakeCompleted := stats.AssocResponses > 0 || stats.ReassocResponses > 0 || stats.BTMAcceptCount > 0
	explicitFailure := len(stats.AssocFailures) > 0

	check.Details = fmt.Sprintf("deauth/disassoc (all destinations): %d, forced-to-client: %d, association failures: %d",
		stats.DeauthCount+stats.DisassocCount, forcedCount, len(stats.AssocFailures))

	switch {
	case explicitFailure:
		check.Passed = false
		check.Recommendation = strPtr("Review association failure status codes; the client was refused by the AP.")
	case !handshakeCompleted:
		check.Passed = false
		check.Recommendation = strPtr("No completed association or reassociation handshake was observed in the capture.")
	case forcedCount > 0:
		check.Passed = false
		check.Recommendation = strPtr("The AP forcibly disconnected the client at least once; investigate the reported reason codes.")
	default:
		check.Passed = true
	}
	return check
}

// checkEffectiveSteering is Check 3 — Effective Steering.
func checkEffectiveSteering(stats domain.RawStats, transitions []domain.SteeringTransition) domain.ComplianceCheck {
	check := domain.ComplianceCheck{Name: "Effective Steering", Category: domain.CategoryPerformance, Severity: domain.SeverityMedium}

	bandChanges := countBandChanges(transitions)
	totalSuccessful := len(transitions)

	check.Details = fmt.Sprintf("band-change-transitions=%d | total-successful-transitions=%d | BTM-accept-count=%d",
		bandChanges, totalSuccessful, stats.BTMAcceptCount)

	check.Passed = bandChanges >= 2 || (bandChanges >= 1 && stats.BTMAcceptCount > 0)
	if !check.Passed {
		check.Recommendation = strPtr("A BSS Transition accept alone did not translate into a physical band or AP change.")
	}
	return check
}

// checkKVRStandards is Check 4 — 802.11k/v/r protocol support.
func checkKVRStandards(kvr domain.KVRSupport) domain.ComplianceCheck {
	check := domain.ComplianceCheck{Name: "KVR Standards", Category: domain.CategoryKVR, Severity: domain.SeverityLow}
	check.Passed = kvr.AnySupported()
	check.Details = fmt.Sprintf("k=%t v=%t r=%t", kvr.K, kvr.V, kvr.R)
	if !check.Passed {
		check.Recommendation = strPtr("Neither 802.11k, 802.11v nor 802.11r traffic was observed; band steering support may be absent.")
	}
	return check
}

// deriveVerdict applies the seven-step priority order.
//
// Preventive steering is checked ahead of the Check-2/Check-1 fail-fast
// gates: a beacon-only capture with no handshake at all and no BTM traffic
// would otherwise fail Check 2 ("no handshake cycle completed") before ever
// reaching the preventive-steering rule, even though a beacon-only capture
// with no Reassoc, no BTM, and the preventive flag set should resolve as
// SUCCESS.
func deriveVerdict(checks []domain.ComplianceCheck, stats domain.RawStats, transitions []domain.SteeringTransition) domain.Verdict {
	if stats.PreventiveSteeringDetected {
		return domain.VerdictSuccess
	}

	check1, check2, check3 := checks[0], checks[1], checks[2]

	if !check2.Passed {
		return domain.VerdictFailed
	}
	if !check1.Passed {
		return domain.VerdictFailed
	}
	if check3.Passed {
		return domain.VerdictSuccess
	}
	if len(transitions) > 0 {
		if check1.Passed {
			return domain.VerdictPartial
		}
		return domain.VerdictFailed
	}
	if stats.BTMAcceptCount > 0 && btmSuccessRate(stats) > 0.5 && countBandChanges(transitions) == 0 {
		return domain.VerdictPartial
	}
	return domain.VerdictFailed
}

func btmSuccessRate(stats domain.RawStats) float64 {
	if stats.BTMResponses == 0 {
		return 0
	}
	return float64(stats.BTMAcceptCount) / float64(stats.BTMResponses)
}

func countBandChanges(transitions []domain.SteeringTransition) int {
	count := 0
	for _, t := range transitions {
		if t.IsBandChange {
			count++
		}
	}
	return count
}

func describeStatusCodes(codes []int) string {
	if len(codes) == 0 {
		return "none"
	}
	sorted := append([]int(nil), codes...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for _, c := range sorted {
		parts = append(parts, fmt.Sprintf("%d (%s)", c, btmStatusDescription(c)))
	}
	return strings.Join(parts, ", ")
}

func btmStatusDescription(code int) string {
	switch code {
	case 0:
		return "Accept"
	case 1:
		return "Reject - Unspecified reason"
	case 2:
		return "Reject - Insufficient beacon interval"
	case 3:
		return "Reject - Insufficient capacity"
	case 4:
		return "Reject - BSS termination undesired"
	case 5:
		return "Reject - BSS termination delay requested"
	case 6:
		return "Reject - STA BSS transition candidate list provided"
	case 7:
		return "Reject - No suitable BSS transition candidates"
	case 8:
		return "Reject - Leaving ESS"
	default:
		return "Reserved/unknown"
	}
}
