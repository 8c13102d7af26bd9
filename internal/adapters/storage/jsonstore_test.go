package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnalysis(id string) *domain.BandSteeringAnalysis {
	model := "Galaxy S23"
	return &domain.BandSteeringAnalysis{
		AnalysisID: id,
		Filename:   "capture.pcapng",
		Devices: []domain.DeviceInfo{
			{MAC: "aa:bb:cc:11:22:33", Vendor: "Samsung Electronics", Model: &model},
		},
		Verdict: domain.VerdictSuccess,
	}
}

func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	analysis := testAnalysis("11111111-1111-1111-1111-111111111111")
	path, err := store.Save(context.Background(), analysis)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "samsung-electronics")
	assert.Contains(t, path, "galaxy-s23")

	loaded, err := store.Load(context.Background(), analysis.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, analysis.AnalysisID, loaded.AnalysisID)
	assert.Equal(t, analysis.Verdict, loaded.Verdict)
}

func TestJSONStoreLoadUnknownIDFails(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestJSONStoreDeleteRemovesFileAndCaptureCopy(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	capturePath := filepath.Join(t.TempDir(), "11111111-1111-1111-1111-111111111111_session.pcapng")
	require.NoError(t, os.WriteFile(capturePath, []byte("fake capture bytes"), 0o644))

	analysis := testAnalysis("22222222-2222-2222-2222-222222222222")
	analysis.OriginalFilePath = capturePath

	path, err := store.Save(context.Background(), analysis)
	require.NoError(t, err)

	captureCopy := filepath.Join(filepath.Dir(path), "session.pcapng")
	assert.FileExists(t, captureCopy)

	require.NoError(t, store.Delete(context.Background(), analysis.AnalysisID))
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, captureCopy)

	_, err = store.Load(context.Background(), analysis.AnalysisID)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestJSONStoreUnknownVendorFallsBackToUnknownSlug(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	analysis := &domain.BandSteeringAnalysis{AnalysisID: "33333333-3333-3333-3333-333333333333"}
	path, err := store.Save(context.Background(), analysis)
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join("unknown", "unknown-device"))
}

func TestStripUUIDPrefix(t *testing.T) {
	assert.Equal(t, "session.pcapng", stripUUIDPrefix("11111111-1111-1111-1111-111111111111_session.pcapng"))
	assert.Equal(t, "session.pcapng", stripUUIDPrefix("11111111-1111-1111-1111-111111111111-session.pcapng"))
	assert.Equal(t, "session.pcapng", stripUUIDPrefix("session.pcapng"))
}
