package domain

import "time"

// SignalSample is one RSSI observation kept for the primary client, after
// downsampling to at most 500 points.
type SignalSample struct {
	Timestamp float64 `json:"timestamp"`
	RSSI      int     `json:"rssi"`
	Band      Band    `json:"band"`
	SA        string  `json:"sa"`
	DA        string  `json:"da"`
}

// AssociationFailure records a single rejected assoc/reassoc attempt.
type AssociationFailure struct {
	Timestamp  float64 `json:"timestamp"`
	BSSID      string  `json:"bssid"`
	StatusCode int     `json:"status_code"`
}

// RawStats is C5's source-of-truth diagnostics block: every counter
// downstream components may refine but must never contradict.
type RawStats struct {
	TotalPackets int `json:"total_packets"`
	WLANPackets  int `json:"wlan_packets"`

	ProtocolCounts map[string]int `json:"protocol_counts"`
	TopSources     map[string]int `json:"top_sources"`
	TopDestinations map[string]int `json:"top_destinations"`

	Beacons24       int `json:"beacons_24"`
	Beacons5        int `json:"beacons_5"`
	ProbeRequests24 int `json:"probe_requests_24"`
	ProbeRequests5  int `json:"probe_requests_5"`
	ProbeResponses24 int `json:"probe_responses_24"`
	ProbeResponses5  int `json:"probe_responses_5"`
	Data24          int `json:"data_24"`
	Data5           int `json:"data_5"`

	BTMRequests      int   `json:"btm_requests"`
	BTMResponses     int   `json:"btm_responses"`
	BTMAcceptCount   int   `json:"btm_accept_count"`
	BTMRejectCount   int   `json:"btm_reject_count"`
	BTMStatusCodes   []int `json:"btm_status_codes"`

	AssocRequests       int                   `json:"assoc_requests"`
	AssocResponses      int                   `json:"assoc_responses"`
	ReassocRequests     int                   `json:"reassoc_requests"`
	ReassocResponses    int                   `json:"reassoc_responses"`
	AssocSuccessCount   int                   `json:"assoc_success_count"`
	AssocFailures       []AssociationFailure  `json:"assoc_failures"`

	DeauthCount      int   `json:"deauth_count"`
	DisassocCount    int   `json:"disassoc_count"`
	ReasonCodesSeen  []int `json:"reason_codes_seen"`

	KVR KVRSupport `json:"kvr"`

	BSSIDs map[string]*BSSIDInfo `json:"bssids"`

	AllMACCandidates []string `json:"all_mac_candidates"`

	FreqBandMismatches []FreqBandMismatch `json:"freq_band_mismatches,omitempty"`

	SteeringAttempts int `json:"steering_attempts"`

	PreventiveSteeringDetected bool `json:"preventive_steering_detected"`
}

// MismatchSeverity is how seriously a wireshark_compare diagnostic should be
// treated.
type MismatchSeverity string

const (
	MismatchWarning MismatchSeverity = "warning"
	MismatchError   MismatchSeverity = "error"
)

// CounterMismatch is one entry in the wireshark_compare diagnostic block:
// a raw counter that disagrees with its post-processed counterpart.
type CounterMismatch struct {
	Field    string           `json:"field"`
	Raw      int              `json:"raw"`
	Derived  int              `json:"derived"`
	Severity MismatchSeverity `json:"severity"`
	Note     string           `json:"note,omitempty"`
}

// BandSteeringAnalysis is the persisted artifact: the
// complete output of one capture's analysis.
type BandSteeringAnalysis struct {
	AnalysisID         string    `json:"analysis_id"`
	Filename           string    `json:"filename"`
	AnalysisTimestamp  time.Time `json:"analysis_timestamp"`
	TotalPackets       int       `json:"total_packets"`
	WLANPackets        int       `json:"wlan_packets"`
	AnalysisDurationMS int64     `json:"analysis_duration_ms"`

	Devices []DeviceInfo `json:"devices"`

	BTMEvents     []BTMEvent            `json:"btm_events"`
	Transitions   []SteeringTransition  `json:"transitions"`
	SignalSamples []SignalSample        `json:"signal_samples"`

	BTMRequests       int     `json:"btm_requests"`
	BTMResponses      int     `json:"btm_responses"`
	BTMSuccessRate    float64 `json:"btm_success_rate"`

	SuccessfulTransitions int `json:"successful_transitions"`
	FailedTransitions     int `json:"failed_transitions"`
	LoopsDetected         int `json:"loops_detected"`

	KVRSupport KVRSupport `json:"kvr_support"`

	ComplianceChecks []ComplianceCheck `json:"compliance_checks"`
	Verdict          Verdict           `json:"verdict"`

	RawStats RawStats `json:"raw_stats"`

	WiresharkCompare []CounterMismatch `json:"wireshark_compare,omitempty"`

	OriginalFilePath string `json:"original_file_path"`
	AnalysisText     string `json:"analysis_text"`
}
