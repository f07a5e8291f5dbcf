package handlers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/infrastructure/config"
)

func TestInitHandler_Handle(t *testing.T) {
	dir := t.TempDir()
	h := NewInitHandler()

	result, err := h.Handle(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".lineage", "config.yaml"), result.ConfigPath)
	assert.True(t, config.Exists(dir))

	_, err = h.Handle(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}
