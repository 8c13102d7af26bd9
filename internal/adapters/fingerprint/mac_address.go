package fingerprint

import (
	"fmt"
	"net"
	"strings"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// MACAddress is a validated client or AP hardware address: the value every
// vendor-lookup repository keys on (by its OUI) and the classifier (C2)
// reports back on domain.DeviceInfo.MAC.
type MACAddress struct {
	address net.HardwareAddr
}

// ParseMAC parses "XX:XX:XX:XX:XX:XX", "XX-XX-XX-XX-XX-XX" or a bare
// 12-hex-digit string into a MACAddress.
func ParseMAC(s string) (MACAddress, error) {
	if s == "" {
		return MACAddress{}, ErrEmptyMAC
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	normalized = strings.ReplaceAll(normalized, ".", ":")

	if !strings.Contains(normalized, ":") && len(normalized) == 12 {
		var parts []string
		for i := 0; i < len(normalized); i += 2 {
			if i+2 <= len(normalized) {
				parts = append(parts, normalized[i:i+2])
			}
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil {
		return MACAddress{}, &domain.ValidationError{Field: "mac", Value: s, Err: ErrInvalidMAC}
	}

	return MACAddress{address: hw}, nil
}

// MustParseMAC parses a MAC address and panics on error. Only for tests or
// known-valid literals.
func MustParseMAC(s string) MACAddress {
	mac, err := ParseMAC(s)
	if err != nil {
		panic(fmt.Sprintf("invalid MAC address %q: %v", s, err))
	}
	return mac
}

// OUI returns the first three octets as "XX:XX:XX" — the key every vendor
// repository in this package looks vendors up by.
func (m MACAddress) OUI() string {
	if len(m.address) < 3 {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X", m.address[0], m.address[1], m.address[2])
}

// IsRandomized reports whether the locally-administered-address bit (bit
// 0x02 of the first octet) is set — spec.md §4.2's virtual/randomized-MAC
// signal.
func (m MACAddress) IsRandomized() bool {
	if len(m.address) == 0 {
		return false
	}
	return (m.address[0] & 0x02) != 0
}

// String renders the address in standard "XX:XX:XX:XX:XX:XX" form.
func (m MACAddress) String() string {
	return strings.ToUpper(m.address.String())
}

// IsValid reports whether the address carries any bytes at all (the zero
// value is never valid).
func (m MACAddress) IsValid() bool {
	return len(m.address) > 0
}
