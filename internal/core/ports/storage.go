package ports

import (
	"context"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// AnalysisStore persists the authoritative JSON tree for each analysis and
// its associated capture copy. The store is the source of truth; any index
// is a derived, rebuildable cache.
type AnalysisStore interface {
	// Save writes the analysis under its vendor/model tree and returns the
	// path it was written to.
	Save(ctx context.Context, analysis *domain.BandSteeringAnalysis) (path string, err error)

	// Load reads a previously saved analysis by ID.
	Load(ctx context.Context, analysisID string) (*domain.BandSteeringAnalysis, error)

	// Delete removes an analysis and its capture copy from disk.
	Delete(ctx context.Context, analysisID string) error
}

// AnalysisSummary is the condensed view of an analysis returned by list
// queries, cheap enough to build from an index without opening the JSON
// tree.
type AnalysisSummary struct {
	AnalysisID  string
	Filename    string
	Vendor      string
	Model       string
	Verdict     domain.Verdict
	TimestampMS int64
}

// ListFilter narrows a registry List call.
type ListFilter struct {
	Vendor  string
	Verdict domain.Verdict
	Limit   int
	Offset  int
}

// AnalysisIndex is the fast secondary query path over saved analyses (C9),
// backed by a relational store kept in sync with AnalysisStore at save and
// delete time. It is rebuildable from the JSON tree and never the system of
// record.
type AnalysisIndex interface {
	Upsert(ctx context.Context, summary AnalysisSummary) error
	Remove(ctx context.Context, analysisID string) error
	List(ctx context.Context, filter ListFilter) ([]AnalysisSummary, error)
	Stats(ctx context.Context) (RegistryStats, error)
	Close() error
}

// RegistryStats is the aggregate view across all indexed analyses.
type RegistryStats struct {
	TotalAnalyses   int
	SuccessCount    int
	PartialCount    int
	FailedCount     int
	VendorCounts    map[string]int
}
