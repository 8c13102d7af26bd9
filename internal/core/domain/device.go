package domain

// DeviceCategory is the closed set of buckets the classifier (C2) resolves a
// vendor string into.
type DeviceCategory string

const (
	CategoryMobile           DeviceCategory = "mobile"
	CategoryComputer         DeviceCategory = "computer"
	CategoryNetworkEquipment DeviceCategory = "network_equipment"
	CategoryVirtualMachine   DeviceCategory = "virtual_machine"
	CategoryUnknownDevice    DeviceCategory = "unknown"
)

// DeviceInfo describes the client device under analysis, resolved by C2 from
// its MAC OUI, the capture filename, and any user-supplied hints.
type DeviceInfo struct {
	MAC        string         `json:"mac"`
	OUI        string         `json:"oui"`
	Vendor     string         `json:"vendor"`
	Model      *string        `json:"model,omitempty"`
	Category   DeviceCategory `json:"category"`
	IsVirtual  bool           `json:"is_virtual"`
	Confidence float64        `json:"confidence"`
}

// UserHints is the optional per-analysis metadata a caller may supply to
// override or enrich automatic classification.
type UserHints struct {
	SSID         string `json:"ssid,omitempty"`
	ClientMAC    string `json:"client_mac,omitempty"`
	DeviceBrand  string `json:"device_brand,omitempty"`
	DeviceModel  string `json:"device_model,omitempty"`
}
