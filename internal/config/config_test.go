package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFillsDefaultsForUnsetFields(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "disseminate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  target_root: ./out\n"), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "./out", cfg.Output.TargetRoot)
	assert.Equal(t, 4, cfg.Build.WorkerLimit)
	assert.Equal(t, []string{"html"}, cfg.Build.DefaultTargets)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "disseminate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  target_root: ${DISSEMINATE_TEST_TARGET}\n"), 0o644))

	t.Setenv("DISSEMINATE_TEST_TARGET", "/tmp/expanded-target")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded-target", cfg.Output.TargetRoot)
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitRefusesToOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "disseminate.yaml")
	require.NoError(t, Init(cfgPath, false))

	err := Init(cfgPath, false)
	assert.Error(t, err)

	assert.NoError(t, Init(cfgPath, true))
}

func TestCompositeDefaultApplierAppliesEveryDomain(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, NewDefaultApplier().ApplyDefaults(cfg))

	assert.Equal(t, "./build", cfg.Output.TargetRoot)
	assert.Equal(t, 4, cfg.Build.WorkerLimit)
}
