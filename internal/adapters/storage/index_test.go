package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteIndexUpsertAndList(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{
		AnalysisID: "a1", Vendor: "Apple", Verdict: domain.VerdictSuccess, TimestampMS: 100,
	}))
	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{
		AnalysisID: "a2", Vendor: "Samsung", Verdict: domain.VerdictFailed, TimestampMS: 200,
	}))

	results, err := idx.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a2", results[0].AnalysisID, "newest first")
}

func TestSQLiteIndexUpsertIsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a1", Vendor: "Apple", Verdict: domain.VerdictPartial, TimestampMS: 1}))
	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a1", Vendor: "Apple", Verdict: domain.VerdictSuccess, TimestampMS: 5}))

	results, err := idx.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.VerdictSuccess, results[0].Verdict)
}

func TestSQLiteIndexListFiltersByVendorAndVerdict(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a1", Vendor: "Apple", Verdict: domain.VerdictSuccess, TimestampMS: 1}))
	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a2", Vendor: "Apple", Verdict: domain.VerdictFailed, TimestampMS: 2}))
	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a3", Vendor: "Samsung", Verdict: domain.VerdictSuccess, TimestampMS: 3}))

	results, err := idx.List(ctx, ports.ListFilter{Vendor: "Apple", Verdict: domain.VerdictSuccess})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].AnalysisID)
}

func TestSQLiteIndexRemove(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a1", Vendor: "Apple", Verdict: domain.VerdictSuccess, TimestampMS: 1}))
	require.NoError(t, idx.Remove(ctx, "a1"))

	results, err := idx.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteIndexStatsAggregates(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a1", Vendor: "Apple", Verdict: domain.VerdictSuccess, TimestampMS: 1}))
	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a2", Vendor: "Apple", Verdict: domain.VerdictFailed, TimestampMS: 2}))
	require.NoError(t, idx.Upsert(ctx, ports.AnalysisSummary{AnalysisID: "a3", Vendor: "Samsung", Verdict: domain.VerdictPartial, TimestampMS: 3}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAnalyses)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailedCount)
	assert.Equal(t, 1, stats.PartialCount)
	assert.Equal(t, 2, stats.VendorCounts["Apple"])
	assert.Equal(t, 1, stats.VendorCounts["Samsung"])
}
