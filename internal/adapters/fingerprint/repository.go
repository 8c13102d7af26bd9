package fingerprint

import (
	"context"
)

// VendorRepository is the vendor-lookup port spec.md §4.2's classifier (C2)
// depends on. OUIDatabase, StaticVendorRepository, OUICache, and
// CompositeVendorRepository all implement it, so the classifier never knows
// which is behind the interface.
type VendorRepository interface {
	// LookupVendor returns the vendor name for mac's OUI prefix.
	LookupVendor(ctx context.Context, mac MACAddress) (string, error)

	// Close releases any resources held by the repository.
	Close() error
}

// VendorWriter is implemented by repositories the OUI CSV import tool can
// load a vendor.ieee.org-style feed into (OUIDatabase).
type VendorWriter interface {
	// InsertOUI inserts or updates a single OUI entry.
	InsertOUI(ctx context.Context, entry OUIEntry) error

	// BulkInsertOUIs inserts multiple OUI entries in one transaction.
	BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error
}

// VendorStats is implemented by repositories that can report their own
// size and cache effectiveness (OUIDatabase), for tooling and diagnostics.
type VendorStats interface {
	// GetStats returns statistics about the repository.
	GetStats(ctx context.Context) (RepositoryStats, error)
}

// RepositoryStats summarizes a vendor repository's registry size and cache
// performance.
type RepositoryStats struct {
	TotalEntries int
	CacheHits    int64
	CacheMisses  int64
	LastUpdated  string
}

// CompositeVendorRepository chains vendor repositories in priority order —
// app.go wires OUIDatabase ahead of StaticVendorRepository, so a missing or
// unavailable OUI registry still leaves C2 with known-vendor fallbacks
// rather than failing classification outright.
type CompositeVendorRepository struct {
	repositories []VendorRepository
}

// NewCompositeVendorRepository builds a chain that tries each repo, in the
// given order, until one returns a real (non-"Unknown") vendor.
func NewCompositeVendorRepository(repos ...VendorRepository) *CompositeVendorRepository {
	return &CompositeVendorRepository{
		repositories: repos,
	}
}

// LookupVendor tries each repository in chain order, returning the first
// real vendor hit; "Unknown"/not-found results from earlier repositories
// are treated as a miss and the chain continues.
func (c *CompositeVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, mac)
		if err == nil && vendor != "" && vendor != "Unknown" {
			return vendor, nil
		}
		if err != nil && err != ErrVendorNotFound {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "Unknown", lastErr
	}
	return "Unknown", ErrVendorNotFound
}

// Close closes every repository in the chain, returning the first error
// encountered (if any) after attempting all of them.
func (c *CompositeVendorRepository) Close() error {
	var firstErr error
	for _, repo := range c.repositories {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StaticVendorRepository looks vendors up from a fixed in-memory table. It
// is the last link in app.go's vendor chain, and on its own backs the unit
// tests for C2's classifier.
type StaticVendorRepository struct {
	vendors map[string]string
}

// NewStaticVendorRepository builds a static repository over vendors (an OUI
// prefix -> vendor name map). A nil map is valid and always misses.
func NewStaticVendorRepository(vendors map[string]string) *StaticVendorRepository {
	return &StaticVendorRepository{
		vendors: vendors,
	}
}

// LookupVendor looks up mac's OUI prefix in the static map.
func (s *StaticVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	oui := mac.OUI()
	if vendor, ok := s.vendors[oui]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// Close is a no-op; the static table owns no resources.
func (s *StaticVendorRepository) Close() error {
	return nil
}
