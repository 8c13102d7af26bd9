package fingerprint

import "errors"

// Sentinel errors the vendor-lookup chain (OUI database, cache, static and
// composite repositories) returns; callers use errors.Is, never string
// matching. Structured failures (invalid MAC, database I/O) reuse the
// domain package's ValidationError/PersistenceError rather than
// duplicating a second pair of wrapper types for the same shape.
var (
	ErrInvalidMAC          = errors.New("invalid MAC address format")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrDatabaseUnavailable = errors.New("OUI database unavailable")
	ErrEmptyMAC            = errors.New("empty MAC address")
	ErrRepositoryClosed    = errors.New("repository is closed")
)
