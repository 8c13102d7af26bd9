package domain

// SteeringKind is the closed set of classifications a SteeringTransition can
// carry. Modeled as a tagged variant (string enum) // polymorphism, no deep inheritance.
type SteeringKind string

const (
	SteeringAggressive SteeringKind = "aggressive"
	SteeringAssisted   SteeringKind = "assisted"
	SteeringUnknown    SteeringKind = "unknown"
	SteeringPreventive SteeringKind = "preventive"
)

// SteeringTransition is one successful roam/reassociation attributed to a
// cause by the steering state machine (C6). Transitions are a new collection
// derived from — never mutating — the raw steering events.
type SteeringTransition struct {
	ClientMAC         string       `json:"client_mac"`
	Kind              SteeringKind `json:"kind"`
	StartTime         float64      `json:"start_time"`
	EndTime           float64      `json:"end_time"`
	Duration          float64      `json:"duration"`
	FromBSSID         string       `json:"from_bssid"`
	ToBSSID           string       `json:"to_bssid"`
	FromBand          Band         `json:"from_band"`
	ToBand            Band         `json:"to_band"`
	IsBandChange      bool         `json:"is_band_change"`
	IsSuccessful      bool         `json:"is_successful"`
	ReasonCode        *int         `json:"reason_code,omitempty"`
	ReturnedToOriginal bool        `json:"returned_to_original"`
}

// DeauthClassification is the closed set of tags C3 assigns to a deauth or
// disassociation event.
type DeauthClassification string

const (
	DeauthBroadcast       DeauthClassification = "broadcast"
	DeauthDirectedToOther DeauthClassification = "directed_to_other"
	DeauthGraceful        DeauthClassification = "graceful"
	DeauthForcedToClient  DeauthClassification = "forced_to_client"
	DeauthUnknown         DeauthClassification = "unknown"
)
