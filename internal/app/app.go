// Package app wires the band-steering analyzer's adapters and services into
// one runnable Application, the Facade the CLI entry point builds against instead of constructing components by hand.
package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/steeraudit/bandsteer/internal/adapters/dissector"
	"github.com/steeraudit/bandsteer/internal/adapters/fingerprint"
	"github.com/steeraudit/bandsteer/internal/adapters/narrative"
	"github.com/steeraudit/bandsteer/internal/adapters/storage"
	"github.com/steeraudit/bandsteer/internal/config"
	"github.com/steeraudit/bandsteer/internal/core/ports"
	"github.com/steeraudit/bandsteer/internal/core/services/analysis"
	"github.com/steeraudit/bandsteer/internal/core/services/registry"
	"github.com/steeraudit/bandsteer/internal/core/services/worker"
	"github.com/steeraudit/bandsteer/internal/telemetry"
)

// Application holds every long-lived component the analyzer needs: the
// persisted-analysis store and its secondary index, the device classifier,
// the bounded worker pool, and the registry built on top of them. It is the
// single object cmd/bandsteer depends on.
type Application struct {
	Config *config.Config

	Store      ports.AnalysisStore
	Index      ports.AnalysisIndex
	Classifier ports.DeviceClassifier
	Narrative  ports.NarrativeGenerator
	Assembler  *analysis.Assembler
	Pool       *worker.Pool
	Registry   *registry.Registry
}

// New builds and wires an Application from the given configuration. It
// creates the data directory tree, opens the SQLite index, and loads the
// OUI vendor database, but never starts any background work itself.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	telemetry.InitMetrics()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewJSONStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init analysis store: %w", err)
	}
	app.Store = store

	if err := os.MkdirAll(filepath.Dir(cfg.IndexDBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	index, err := storage.NewSQLiteIndex(cfg.IndexDBPath)
	if err != nil {
		return nil, fmt.Errorf("init analysis index: %w", err)
	}
	app.Index = index

	app.Classifier = fingerprint.NewClassifier(app.loadVendorRepository())

	if cfg.NarrativeEnabled {
		app.Narrative = narrative.Templated{}
	} else {
		app.Narrative = narrative.Disabled{}
	}

	dissect := dissector.NewTsharkDissector(cfg.DissectorPath, cfg.DissectorTimeoutSeconds)
	app.Assembler = analysis.New(dissect, app.Classifier, app.Store, app.Index, app.Narrative)
	app.Pool = worker.New(app.Assembler, cfg.MaxConcurrency)
	app.Registry = registry.New(app.Store, app.Index)

	return app, nil
}

// loadVendorRepository opens the OUI database at Config.OUIDBPath and
// chains it ahead of the built-in static vendor table via
// CompositeVendorRepository, so a registry miss still falls through to the
// static table before the classifier ever sees "Unknown". The chain is
// wrapped in an in-memory cache. If the database file is missing or
// unreadable, the chain degrades to the static table alone — a capture can
// still be analyzed without it, just with lower-confidence vendor guesses.
func (app *Application) loadVendorRepository() fingerprint.VendorRepository {
	static := fingerprint.NewStaticVendorRepository(fingerprint.CommonOUIs)

	ouiDB, err := fingerprint.NewOUIDatabase(app.Config.OUIDBPath, 10000, nil)
	if err != nil {
		log.Printf("warning: OUI database unavailable at %s, falling back to static vendor table: %v", app.Config.OUIDBPath, err)
		return fingerprint.NewCachingRepository(20000, static)
	}

	chain := fingerprint.NewCompositeVendorRepository(ouiDB, static)
	return fingerprint.NewCachingRepository(20000, chain)
}

// Close releases the index's database handle. The JSON store and dissector
// hold no long-lived resources.
func (app *Application) Close() error {
	if app.Index != nil {
		return app.Index.Close()
	}
	return nil
}
