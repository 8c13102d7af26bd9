// Package deauth classifies deauthentication and disassociation frames so
// that only exiles truly directed at the client under analysis are ever
// counted as forced steering.
package deauth

import (
	"strings"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// GracefulReasons are IEEE 802.11 reason codes indicating a voluntary
// departure (client-initiated or idle timeout), never a forced steering exile.
var GracefulReasons = map[int]string{
	3:  "STA is leaving (client-initiated)",
	4:  "Disassociated due to inactivity",
	8:  "Deauthenticated because of inactivity",
	32: "Disassociated due to inactivity",
}

// ForcedReasons are reason codes indicating the AP exiled the client.
var ForcedReasons = map[int]string{
	1:  "Unspecified reason (likely AP-initiated)",
	2:  "Previous authentication no longer valid",
	5:  "AP unable to handle all currently associated STAs (AP full)",
	6:  "Class 2 frame received from nonauthenticated STA",
	7:  "Class 3 frame received from nonassociated STA",
	15: "4-Way Handshake timeout",
	16: "Group Key Handshake timeout",
	17: "IE in 4-Way Handshake differs",
	24: "Invalid PMKID",
	25: "Invalid MDE",
	26: "Invalid FTE",
	33: "Disassociated due to lack of QoS resources",
	34: "Disassociated due to poor channel conditions",
}

func normalizeMAC(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

// IsBroadcast reports whether da is a broadcast or multicast destination.
func IsBroadcast(da string) bool {
	d := normalizeMAC(da)
	return d == "ff:ff:ff:ff:ff:ff" || strings.HasPrefix(d, "01:00:5e") || strings.HasPrefix(d, "33:33")
}

// IsForced reports whether reasonCode indicates the AP forcibly exiled the
// client. Unknown codes are conservatively treated as forced: a false
// positive here is cheaper than missing a real steering-by-deauth event.
func IsForced(reasonCode int) bool {
	_, graceful := GracefulReasons[reasonCode]
	return !graceful
}

// ReasonDescription returns a human-readable description of a reason code,
// falling back to a reserved/unknown label.
func ReasonDescription(reasonCode int) string {
	if desc, ok := GracefulReasons[reasonCode]; ok {
		return desc
	}
	if desc, ok := ForcedReasons[reasonCode]; ok {
		return desc
	}
	return "Reserved/unknown reason code"
}

// Classify assigns one of the five DeauthClassification tags to a
// deauth/disassoc frame relative to a specific client MAC.
func Classify(rec domain.CaptureRecord, clientMAC string) domain.DeauthClassification {
	da := normalizeMAC(rec.DA)
	sa := normalizeMAC(rec.SA)

	if da != "" && IsBroadcast(da) {
		return domain.DeauthBroadcast
	}
	if da == "" && sa == "" {
		return domain.DeauthUnknown
	}

	client := normalizeMAC(clientMAC)
	clientIsReceiver := da == client
	clientIsSender := sa == client

	if !clientIsReceiver && !clientIsSender {
		return domain.DeauthDirectedToOther
	}

	if clientIsSender {
		// The client always exits voluntarily when it is the frame's sender,
		// regardless of the reason code it reports.
		return domain.DeauthGraceful
	}

	if IsForced(rec.ReasonCode) {
		return domain.DeauthForcedToClient
	}
	return domain.DeauthGraceful
}

// IsDirectedToClient reports whether a deauth/disassoc frame involves the
// given client as either sender or receiver, excluding broadcast frames.
func IsDirectedToClient(rec domain.CaptureRecord, clientMAC string) bool {
	client := normalizeMAC(clientMAC)
	if client == "" {
		return false
	}
	da := normalizeMAC(rec.DA)
	if da != "" && IsBroadcast(da) {
		return false
	}
	sa := normalizeMAC(rec.SA)
	return da == client || sa == client
}
