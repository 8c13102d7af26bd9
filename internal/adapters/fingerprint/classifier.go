package fingerprint

import (
	"context"
	"regexp"
	"strings"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

var (
	reUUIDPrefix  = regexp.MustCompile(`^[0-9a-fA-F-]{32,}_`)
	reNumPrefix   = regexp.MustCompile(`^[0-9]+[.\s_-]+`)
	reCaptureExt  = regexp.MustCompile(`(?i)\.(pcap|pcapng)$`)
)

// Classifier implements ports.DeviceClassifier: an OUI vendor lookup enriched
// with filename heuristics and keyword-based device categorization.
type Classifier struct {
	vendors VendorRepository
}

// NewClassifier builds a Classifier backed by the given vendor repository
// (typically a CompositeVendorRepository chaining OUIDatabase and a static
// fallback table).
func NewClassifier(vendors VendorRepository) *Classifier {
	return &Classifier{vendors: vendors}
}

// Classify resolves vendor, model, category, virtualization, and confidence
// for a client MAC, in the same order as the original classifier: OUI lookup,
// then filename inference, then user-hint override, then categorization.
func (c *Classifier) Classify(ctx context.Context, macStr string, filename string, hints domain.UserHints) (domain.DeviceInfo, error) {
	mac, err := ParseMAC(macStr)
	if err != nil {
		return domain.DeviceInfo{}, err
	}

	vendor, lookupErr := c.vendors.LookupVendor(ctx, mac)
	if lookupErr != nil || vendor == "" {
		vendor = "Unknown"
	}

	var model *string
	if filename != "" {
		inferredVendor, inferredModel := inferFromFilename(filename, vendor)
		vendor = inferredVendor
		if inferredModel != "" {
			model = &inferredModel
		}
	}

	// §4.2: a locally-administered MAC marks the device virtual and, absent
	// a real OUI hit or a vendor inferred from the filename, names the vendor
	// "Virtual" rather than "Unknown".
	randomized := mac.IsRandomized()
	if randomized && vendor == "Unknown" {
		vendor = "Virtual"
	}

	if hints.DeviceModel != "" {
		m := hints.DeviceModel
		model = &m
	}
	if hints.DeviceBrand != "" {
		vendor = hints.DeviceBrand
	}

	category := categorize(vendor)
	isVirtual := category == domain.CategoryVirtualMachine || randomized

	confidence := 0.1
	if vendor != "Unknown" {
		confidence = 0.9
	}
	if hints.DeviceBrand != "" || hints.DeviceModel != "" || (filename != "" && vendor != "Unknown") {
		confidence = 1.0
	}

	return domain.DeviceInfo{
		MAC:        mac.String(),
		OUI:        mac.OUI(),
		Vendor:     vendor,
		Model:      model,
		Category:   category,
		IsVirtual:  isVirtual,
		Confidence: confidence,
	}, nil
}

// inferFromFilename extracts a vendor/model hint from a capture's original
// filename: strips a leading UUID-and-underscore or numeric prefix, strips
// the capture extension, and checks the remainder against MobileVendors.
func inferFromFilename(filename, currentVendor string) (vendor string, model string) {
	vendor = currentVendor

	clean := reUUIDPrefix.ReplaceAllString(filename, "")
	clean = reNumPrefix.ReplaceAllString(clean, "")
	clean = reCaptureExt.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(clean))

	lower := strings.ToLower(clean)
	for _, v := range MobileVendors {
		if strings.Contains(lower, v) {
			if vendor == "Unknown" {
				vendor = strings.ToUpper(v[:1]) + v[1:]
			}
			model = clean
			return vendor, model
		}
	}

	if model == "" && vendor == "Unknown" {
		model = clean
	}
	return vendor, model
}

// categorize buckets a vendor string into a DeviceCategory using the same
// keyword-group precedence as the original heuristic: virtual machine,
// mobile, laptop chipset, then network equipment.
func categorize(vendor string) domain.DeviceCategory {
	v := strings.ToLower(vendor)

	if containsAny(v, VirtualMachineVendors) {
		return domain.CategoryVirtualMachine
	}
	if containsAny(v, MobileVendors) {
		return domain.CategoryMobile
	}
	if containsAny(v, LaptopChipVendors) {
		return domain.CategoryComputer
	}
	if containsAny(v, NetworkEquipmentVendors) {
		return domain.CategoryNetworkEquipment
	}
	return domain.CategoryUnknownDevice
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
