package fingerprint

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// OUIDatabase is the SQLite-backed embedded OUI table spec.md §4.2 calls
// for: the primary vendor source C2 (the device classifier) consults
// before falling back to the static table. It implements VendorRepository,
// VendorWriter, and VendorStats.
type OUIDatabase struct {
	db       *sql.DB
	cache    *OUICache
	mu       sync.RWMutex
	dbPath   string
	fallback VendorRepository
	closed   bool

	// Prepared statements for better performance
	lookupStmt *sql.Stmt
}

// OUIEntry is one IEEE OUI registry row: a three-octet vendor prefix and
// the vendor metadata the CSV importer (tools/oui/import_oui_csv) loads
// from a vendor.ieee.org-style feed.
type OUIEntry struct {
	Prefix      string
	Vendor      string
	VendorShort string
	Address     string
	Country     string
	LastUpdated time.Time
}

// NewOUIDatabase opens (creating if needed) the SQLite OUI registry at
// dbPath and wraps it with an in-memory LRU of size cacheSize. fallback is
// consulted when a prefix misses the registry entirely, e.g. a
// StaticVendorRepository seeded with the vendors C2's test fixtures expect.
func NewOUIDatabase(dbPath string, cacheSize int, fallback VendorRepository) (*OUIDatabase, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "open", Err: err}
	}

	// Capture analysis runs are short-lived and single-process; a small pool
	// is enough to overlap the classifier's lookups with the writer tool.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &domain.PersistenceError{Op: "ping", Err: err}
	}

	oui := &OUIDatabase{
		db:       db,
		cache:    NewOUICache(cacheSize),
		dbPath:   dbPath,
		fallback: fallback,
	}

	if err := oui.initializeSchema(); err != nil {
		db.Close()
		return nil, &domain.PersistenceError{Op: "initialize_schema", Err: err}
	}

	// The hot path (LookupVendor) runs once per client MAC per analysis; a
	// prepared statement avoids re-parsing the same SELECT every time.
	stmt, err := db.Prepare("SELECT COALESCE(vendor_short, vendor) FROM oui_registry WHERE prefix = ?")
	if err != nil {
		db.Close()
		return nil, &domain.PersistenceError{Op: "prepare_statement", Err: err}
	}
	oui.lookupStmt = stmt

	return oui, nil
}

// initializeSchema creates the oui_registry table on first use.
func (o *OUIDatabase) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS oui_registry (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL,
		vendor_short TEXT,
		address TEXT,
		country TEXT,
		last_updated INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_vendor ON oui_registry(vendor);
	CREATE INDEX IF NOT EXISTS idx_vendor_short ON oui_registry(vendor_short);
	`

	_, err := o.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LookupVendor resolves mac's OUI: cache, then the SQLite registry, then
// o.fallback if neither has it. This is the primary vendor source the
// spec.md §4.2 classifier (C2) calls before any static table.
func (o *OUIDatabase) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	o.mu.RLock()
	if o.closed {
		o.mu.RUnlock()
		return "", ErrRepositoryClosed
	}
	o.mu.RUnlock()

	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	prefix := mac.OUI()

	if vendor, ok := o.cache.Get(prefix); ok {
		return vendor, nil
	}

	var vendor string
	err := o.lookupStmt.QueryRowContext(ctx, prefix).Scan(&vendor)

	if err == sql.ErrNoRows {
		if o.fallback != nil {
			v, err := o.fallback.LookupVendor(ctx, mac)
			if err == nil && v != "" && v != "Unknown" {
				o.cache.Set(prefix, v)
				return v, nil
			}
		}
		return "Unknown", ErrVendorNotFound
	}

	if err != nil {
		if o.fallback != nil {
			v, err := o.fallback.LookupVendor(ctx, mac)
			if err == nil {
				return v, nil
			}
		}
		return "", &domain.PersistenceError{Op: "lookup", Err: err}
	}

	o.cache.Set(prefix, vendor)
	return vendor, nil
}

// InsertOUI writes a single registry row, upserting on prefix. Used by the
// CSV import tool for incremental registry updates.
func (o *OUIDatabase) InsertOUI(ctx context.Context, entry OUIEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	query := `
	INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, address, country, last_updated)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := o.db.ExecContext(ctx, query,
		entry.Prefix,
		entry.Vendor,
		entry.VendorShort,
		entry.Address,
		entry.Country,
		entry.LastUpdated.Unix(),
	)

	if err != nil {
		return &domain.PersistenceError{Op: "insert", Err: err}
	}

	return nil
}

// BulkInsertOUIs loads an entire OUI feed in one transaction — the path the
// CSV import tool uses to seed or refresh the registry from a vendor.ieee.org
// export without a commit per row.
func (o *OUIDatabase) BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, address, country, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return &domain.PersistenceError{Op: "prepare_bulk_insert", Err: err}
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.ExecContext(ctx,
			entry.Prefix,
			entry.Vendor,
			entry.VendorShort,
			entry.Address,
			entry.Country,
			entry.LastUpdated.Unix(),
		)
		if err != nil {
			return &domain.PersistenceError{Op: "bulk_insert_entry", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "commit_transaction", Err: err}
	}

	return nil
}

// GetStats reports registry size and cache hit/miss counts, used by the CSV
// import tool to confirm a load landed and by operators checking cache
// effectiveness on long-running captures.
func (o *OUIDatabase) GetStats(ctx context.Context) (RepositoryStats, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return RepositoryStats{}, ErrRepositoryClosed
	}

	var count int
	var lastUpdateUnix int64

	err := o.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MAX(last_updated), 0) FROM oui_registry",
	).Scan(&count, &lastUpdateUnix)

	if err != nil {
		return RepositoryStats{}, &domain.PersistenceError{Op: "get_stats", Err: err}
	}

	lastUpdate := time.Unix(lastUpdateUnix, 0).Format("2006-01-02")
	cacheStats := o.cache.Stats()

	return RepositoryStats{
		TotalEntries: count,
		CacheHits:    cacheStats.Hits,
		CacheMisses:  cacheStats.Misses,
		LastUpdated:  lastUpdate,
	}, nil
}

// Close releases the prepared statement, cache, and underlying SQLite
// connection. Safe to call more than once.
func (o *OUIDatabase) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}

	o.closed = true

	if o.lookupStmt != nil {
		o.lookupStmt.Close()
	}

	if o.cache != nil {
		o.cache.Close()
	}

	if o.db != nil {
		return o.db.Close()
	}

	return nil
}

// NormalizeMAC converts a raw OUI prefix (any of "XX:XX:XX", "XX-XX-XX",
// or six bare hex digits) into the canonical "XX:XX:XX" form the OUI
// registry keys its rows by. Exported for the CSV import tool, which needs
// the same normalization applied to vendor.ieee.org-style feeds.
func NormalizeMAC(mac string) string {
	mac = strings.ReplaceAll(mac, "-", ":")
	mac = strings.ReplaceAll(mac, ".", ":")
	mac = strings.ToUpper(mac)

	if len(mac) >= 8 && mac[2] == ':' && mac[5] == ':' {
		return mac[:8]
	}

	if len(mac) >= 6 {
		return fmt.Sprintf("%s:%s:%s", mac[0:2], mac[2:4], mac[4:6])
	}

	return mac
}
