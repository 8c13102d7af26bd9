package storage

import (
	"context"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// AnalysisModel is the GORM row mirroring ports.AnalysisSummary, kept in
// sync with the JSON tree at save/delete time. It is a
// rebuildable cache: the JSON tree remains the system of record.
type AnalysisModel struct {
	AnalysisID  string `gorm:"primaryKey;column:analysis_id"`
	Filename    string
	Vendor      string `gorm:"index"`
	Model       string
	Verdict     string `gorm:"index"`
	TimestampMS int64  `gorm:"index"`
}

func (AnalysisModel) TableName() string { return "analysis_models" }

// SQLiteIndex implements ports.AnalysisIndex over a GORM/SQLite database.
type SQLiteIndex struct {
	db *gorm.DB
}

// NewSQLiteIndex opens (creating if necessary) the index database at path
// and migrates its schema.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "open index", Err: err}
	}

	if err := db.AutoMigrate(&AnalysisModel{}); err != nil {
		return nil, &domain.PersistenceError{Op: "migrate index", Err: err}
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, &domain.PersistenceError{Op: "instrument index", Err: err}
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_analysis_timestamp ON analysis_models(timestamp_ms)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_analysis_vendor ON analysis_models(vendor)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_analysis_verdict ON analysis_models(verdict)")

	return &SQLiteIndex{db: db}, nil
}

// Upsert inserts or updates the summary row for one analysis.
func (s *SQLiteIndex) Upsert(ctx context.Context, summary ports.AnalysisSummary) error {
	model := AnalysisModel{
		AnalysisID:  summary.AnalysisID,
		Filename:    summary.Filename,
		Vendor:      summary.Vendor,
		Model:       summary.Model,
		Verdict:     string(summary.Verdict),
		TimestampMS: summary.TimestampMS,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "analysis_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"filename", "vendor", "model", "verdict", "timestamp_ms"}),
	}).Create(&model).Error
	if err != nil {
		return &domain.PersistenceError{Op: "upsert index row", Err: err}
	}
	return nil
}

// Remove deletes the summary row for one analysis.
func (s *SQLiteIndex) Remove(ctx context.Context, analysisID string) error {
	if err := s.db.WithContext(ctx).Delete(&AnalysisModel{}, "analysis_id = ?", analysisID).Error; err != nil {
		return &domain.PersistenceError{Op: "remove index row", Err: err}
	}
	return nil
}

// List returns summaries matching filter, newest first.
func (s *SQLiteIndex) List(ctx context.Context, filter ports.ListFilter) ([]ports.AnalysisSummary, error) {
	query := s.db.WithContext(ctx).Model(&AnalysisModel{}).Order("timestamp_ms DESC")

	if filter.Vendor != "" {
		query = query.Where("vendor = ?", filter.Vendor)
	}
	if filter.Verdict != "" {
		query = query.Where("verdict = ?", string(filter.Verdict))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []AnalysisModel
	if err := query.Find(&models).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "list index", Err: err}
	}

	summaries := make([]ports.AnalysisSummary, len(models))
	for i, m := range models {
		summaries[i] = ports.AnalysisSummary{
			AnalysisID:  m.AnalysisID,
			Filename:    m.Filename,
			Vendor:      m.Vendor,
			Model:       m.Model,
			Verdict:     domain.Verdict(m.Verdict),
			TimestampMS: m.TimestampMS,
		}
	}
	return summaries, nil
}

// Stats computes the aggregate view across every indexed analysis.
func (s *SQLiteIndex) Stats(ctx context.Context) (ports.RegistryStats, error) {
	var models []AnalysisModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return ports.RegistryStats{}, &domain.PersistenceError{Op: "index stats", Err: err}
	}

	stats := ports.RegistryStats{VendorCounts: make(map[string]int)}
	for _, m := range models {
		stats.TotalAnalyses++
		switch domain.Verdict(m.Verdict) {
		case domain.VerdictSuccess:
			stats.SuccessCount++
		case domain.VerdictPartial:
			stats.PartialCount++
		case domain.VerdictFailed:
			stats.FailedCount++
		}
		if m.Vendor != "" {
			stats.VendorCounts[m.Vendor]++
		}
	}
	return stats, nil
}

// Close releases the underlying database connection.
func (s *SQLiteIndex) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ ports.AnalysisIndex = (*SQLiteIndex)(nil)
