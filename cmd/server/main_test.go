package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/fitlevel/internal/config"
)

func TestLoadDatasetDefaultsToEmbedded(t *testing.T) {
	ds, err := loadDataset("")
	require.NoError(t, err)
	assert.Equal(t, 442, ds.Len())

	_, err = loadDataset(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestBuildService(t *testing.T) {
	svc, err := buildService(&config.Config{Estimators: 10, Seed: 42, TestSize: 0.2})
	require.NoError(t, err)
	assert.Equal(t, 10, svc.ModelInfo().Estimators)

	_, err = buildService(&config.Config{Estimators: 10, Seed: 42, TestSize: 0.2, DatasetPath: "missing.csv"})
	assert.Error(t, err)
}
