package domain

import (
	"fmt"
	"net"
	"regexp"
)

// MaxSSIDLength is the IEEE 802.11 SSID length ceiling in bytes.
const MaxSSIDLength = 32

// reMAC matches standard MAC address formats (XX:XX:XX:XX:XX:XX or XX-XX-XX-XX-XX-XX).
var reMAC = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// Validator is the bridge for domain-level validation logic, kept as an
// interface so services can accept a mock in tests.
type Validator interface {
	MAC(mac string) error
	SSID(ssid string) error
}

// DefaultValidator implements standard validations for capture inputs.
type DefaultValidator struct{}

// MAC validates a hardware address for both syntactic format and semantic correctness.
func (v DefaultValidator) MAC(mac string) error {
	if !reMAC.MatchString(mac) {
		return &ValidationError{Field: "mac", Value: mac, Err: fmt.Errorf("expected XX:XX:XX:XX:XX:XX")}
	}
	if _, err := net.ParseMAC(mac); err != nil {
		return &ValidationError{Field: "mac", Value: mac, Err: err}
	}
	return nil
}

// SSID validates an IEEE 802.11 SSID (Service Set Identifier).
func (v DefaultValidator) SSID(ssid string) error {
	if len(ssid) == 0 || len(ssid) > MaxSSIDLength {
		return &ValidationError{Field: "ssid", Value: ssid, Err: fmt.Errorf("length %d out of range 1-%d", len(ssid), MaxSSIDLength)}
	}
	return nil
}

var domainValidator Validator = DefaultValidator{}

// IsValidMAC checks if the string is a valid MAC address.
func IsValidMAC(mac string) bool {
	return domainValidator.MAC(mac) == nil
}

// IsValidSSID checks if the string is a valid SSID.
func IsValidSSID(ssid string) bool {
	return domainValidator.SSID(ssid) == nil
}
