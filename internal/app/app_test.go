package app

import (
	"testing"

	"github.com/steeraudit/bandsteer/internal/adapters/narrative"
	"github.com/steeraudit/bandsteer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresAllComponents(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:        dir,
		IndexDBPath:    dir + "/index.db",
		OUIDBPath:      dir + "/missing-oui.db",
		DissectorPath:  "tshark",
		MaxConcurrency: 2,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	defer application.Close()

	assert.NotNil(t, application.Store)
	assert.NotNil(t, application.Index)
	assert.NotNil(t, application.Classifier)
	assert.NotNil(t, application.Narrative)
	assert.NotNil(t, application.Assembler)
	assert.NotNil(t, application.Pool)
	assert.NotNil(t, application.Registry)
}

func TestNewFallsBackToDisabledNarrativeByDefault(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:        dir,
		IndexDBPath:    dir + "/index.db",
		OUIDBPath:      dir + "/missing-oui.db",
		DissectorPath:  "tshark",
		MaxConcurrency: 1,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	defer application.Close()

	assert.IsType(t, narrative.Disabled{}, application.Narrative)
}
