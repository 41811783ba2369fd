package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/procmon/internal/config"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(config.ConfigPathEnv, "")
	return dir
}

func TestConfigInitCommand(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "nested", "procmon.yaml")

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, path, false))
	assert.Contains(t, out.String(), "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_sort")

	err = configInitCommand(&out, path, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, configInitCommand(&out, path, true))
}

func TestConfigInitCommand_DefaultPath(t *testing.T) {
	dir := isolateConfig(t)

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, "", false))
	assert.FileExists(t, filepath.Join(dir, config.GlobalConfigDir, config.GlobalConfigFile))
}

func TestConfigShowCommand(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "procmon.yaml")
	require.NoError(t, configInitCommand(&bytes.Buffer{}, path, false))

	var out bytes.Buffer
	require.NoError(t, configShowCommand(&out, path))
	assert.Contains(t, out.String(), "# source: "+path)
	assert.Contains(t, out.String(), "default_sort: cpu")
}

func TestConfigShowCommand_MissingExplicit(t *testing.T) {
	dir := isolateConfig(t)

	err := configShowCommand(&bytes.Buffer{}, filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfigNotFound, ErrorToJSON(err).Code)
}

func TestConfigSetCommand(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "procmon.yaml")
	require.NoError(t, configInitCommand(&bytes.Buffer{}, path, false))

	var out bytes.Buffer
	require.NoError(t, configSetCommand(&out, path, "ui.default_sort", "mem"))
	assert.Contains(t, out.String(), "ui.default_sort = mem")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mem", cfg.UI.DefaultSort)
}

func TestConfigSetCommand_RestoresOnInvalidValue(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "procmon.yaml")
	require.NoError(t, configInitCommand(&bytes.Buffer{}, path, false))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = configSetCommand(&bytes.Buffer{}, path, "ui.default_sort", "colour")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestConfigSetCommand_NoFile(t *testing.T) {
	isolateConfig(t)
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	err := configSetCommand(&bytes.Buffer{}, "", "ui.default_sort", "mem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No config file to change")
}

func TestDashboardLogger(t *testing.T) {
	log, closeFn, err := dashboardLogger("")
	require.NoError(t, err)
	log.Info("dropped")
	closeFn()

	path := filepath.Join(t.TempDir(), "procmon.log")
	log, closeFn, err = dashboardLogger(path)
	require.NoError(t, err)
	log.Warn("collector %s stalled", "top")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[procmon] ")
	assert.Contains(t, string(data), "WARN: collector top stalled")

	_, _, err = dashboardLogger(filepath.Join(t.TempDir(), "missing", "procmon.log"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
