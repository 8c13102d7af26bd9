// Package storage persists each analysis artifact as a JSON tree on disk and
// indexes it in SQLite for fast list/filter queries. The JSON tree is the
// system of record; the index is rebuildable and never
// authoritative.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
)

var _ ports.AnalysisStore = (*JSONStore)(nil)

// JSONStore implements ports.AnalysisStore by writing one JSON file per
// analysis under dataDir/{vendor_slug}/{device_slug_or_mac}/{analysis_id}.json,
// with the original capture copied alongside it.
type JSONStore struct {
	dataDir string

	// dirLocks serializes writers to the same vendor/device directory; reads
	// never take a lock, matching the multi-reader/single-writer model the
	// capture tree is built around.
	mu       sync.Mutex
	dirLocks map[string]*sync.Mutex

	// byID caches analysis_id -> file path so Load/Delete don't have to walk
	// the whole tree; rebuilt lazily by walking on first miss.
	idMu sync.RWMutex
	byID map[string]string
}

// NewJSONStore creates a store rooted at dataDir/analyses, creating it if
// it doesn't already exist.
func NewJSONStore(dataDir string) (*JSONStore, error) {
	root := filepath.Join(dataDir, "analyses")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &domain.PersistenceError{Op: "init store", Err: err}
	}
	return &JSONStore{
		dataDir:  root,
		dirLocks: make(map[string]*sync.Mutex),
		byID:     make(map[string]string),
	}, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify normalizes a vendor or model name into a directory-safe slug:
// lowercase, non-alphanumeric runs collapsed to a single hyphen, trimmed.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unknown"
	}
	return s
}

func deviceSlug(d domain.DeviceInfo) string {
	if d.Model != nil && *d.Model != "" {
		return slugify(*d.Model)
	}
	if d.MAC != "" {
		return slugify(d.MAC)
	}
	return "unknown-device"
}

func (s *JSONStore) lockFor(dir string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.dirLocks[dir]
	if !ok {
		l = &sync.Mutex{}
		s.dirLocks[dir] = l
	}
	return l
}

// Save writes the analysis JSON under its vendor/device directory and copies
// the original capture file alongside it, stripping any leading UUID prefix
// the capture path's basename carries. Directory creation is idempotent.
func (s *JSONStore) Save(ctx context.Context, analysis *domain.BandSteeringAnalysis) (string, error) {
	vendor := "unknown"
	device := domain.DeviceInfo{}
	if len(analysis.Devices) > 0 {
		device = analysis.Devices[0]
		if device.Vendor != "" {
			vendor = device.Vendor
		}
	}

	dir := filepath.Join(s.dataDir, slugify(vendor), deviceSlug(device))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.PersistenceError{Op: "save", Err: err}
	}

	lock := s.lockFor(dir)
	lock.Lock()
	defer lock.Unlock()

	path := filepath.Join(dir, analysis.AnalysisID+".json")
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", &domain.PersistenceError{Op: "save", Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &domain.PersistenceError{Op: "save", Err: err}
	}

	if analysis.OriginalFilePath != "" {
		if err := copyCaptureFile(analysis.OriginalFilePath, dir, analysis.AnalysisID); err != nil {
			return "", &domain.PersistenceError{Op: "save capture copy", Err: err}
		}
	}

	s.idMu.Lock()
	s.byID[analysis.AnalysisID] = path
	s.idMu.Unlock()

	return path, nil
}

// copyCaptureFile copies the capture at src into dir, stripping a leading
// UUID prefix (and its separator) from the basename if one is present.
func copyCaptureFile(src, dir, analysisID string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	name := stripUUIDPrefix(filepath.Base(src))
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

var uuidPrefixPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}[-_]`)

func stripUUIDPrefix(name string) string {
	if stripped := uuidPrefixPattern.ReplaceAllString(name, ""); stripped != "" {
		return stripped
	}
	return name
}

// Load reads a previously saved analysis by ID, walking the tree on a cache
// miss.
func (s *JSONStore) Load(ctx context.Context, analysisID string) (*domain.BandSteeringAnalysis, error) {
	s.idMu.RLock()
	path, ok := s.byID[analysisID]
	s.idMu.RUnlock()

	if !ok {
		found, err := s.findPath(analysisID)
		if err != nil {
			return nil, err
		}
		path = found
		s.idMu.Lock()
		s.byID[analysisID] = path
		s.idMu.Unlock()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}

	var analysis domain.BandSteeringAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}
	return &analysis, nil
}

// Delete removes an analysis's JSON file and its capture copy.
func (s *JSONStore) Delete(ctx context.Context, analysisID string) error {
	s.idMu.RLock()
	path, ok := s.byID[analysisID]
	s.idMu.RUnlock()

	if !ok {
		found, err := s.findPath(analysisID)
		if err != nil {
			return err
		}
		path = found
	}

	dir := filepath.Dir(path)
	lock := s.lockFor(dir)
	lock.Lock()
	defer lock.Unlock()

	analysis, err := s.Load(ctx, analysisID)
	if err == nil && analysis.OriginalFilePath != "" {
		captureCopy := filepath.Join(dir, stripUUIDPrefix(filepath.Base(analysis.OriginalFilePath)))
		os.Remove(captureCopy)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.PersistenceError{Op: "delete", Err: err}
	}

	s.idMu.Lock()
	delete(s.byID, analysisID)
	s.idMu.Unlock()

	return nil
}

// findPath walks the tree looking for {analysisID}.json; the tree is small
// enough (one file per analysis) that this is only a fallback for a
// cold-started store.
func (s *JSONStore) findPath(analysisID string) (string, error) {
	target := analysisID + ".json"
	var found string
	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if !d.IsDir() && d.Name() == target {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", &domain.PersistenceError{Op: "load", Err: err}
	}
	if found == "" {
		return "", domain.ErrAnalysisNotFound
	}
	return found, nil
}
