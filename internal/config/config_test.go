package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRoots, EnvExtensions, EnvMaxWorkers, EnvCacheDir} {
		t.Setenv(key, "")
	}
}

func TestLoadWithoutConfigUsesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Empty(t, cfg.Path)
	assert.Equal(t, []string{dir}, cfg.Roots)
	assert.Equal(t, []string{".js"}, cfg.Extensions)
	assert.Equal(t, "index", cfg.DirectoryEntry)
	assert.Equal(t, runtime.NumCPU(), cfg.MaxWorkers)
	assert.Equal(t, DefaultResolverCacheSize, cfg.ResolverCacheSize)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join(dir, ".reach"), cfg.Cache.Dir)
}

func TestLoadFindsConfigInParentDirectory(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "reach.yaml"), `
roots: [src, /abs/vendor]
extensions: [js, .json, .js]
ignore:
  - "**/__tests__/**"
respect_gitignore: true
max_workers: 2
resolver_cache_size: 0
cache:
  enabled: false
  dir: tmp/cache
`)
	nested := filepath.Join(dir, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := Load(nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "reach.yaml"), cfg.Path)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, []string{filepath.Join(dir, "src"), "/abs/vendor"}, cfg.Roots)
	assert.Equal(t, []string{".js", ".json"}, cfg.Extensions)
	assert.Equal(t, []string{"**/__tests__/**"}, cfg.Ignore)
	assert.True(t, cfg.RespectGitignore)
	assert.Equal(t, 2, cfg.MaxWorkers)
	assert.Zero(t, cfg.ResolverCacheSize)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join(dir, "tmp", "cache"), cfg.Cache.Dir)
}

func TestFindPrefersYmlOverYaml(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "reach.yml"), "")
	mustWriteFile(t, filepath.Join(dir, "reach.yaml"), "")

	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reach.yml"), path)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "reach.yml"), "roots: [lib]\nextensions: [.js]\nmax_workers: 2\n")

	t.Setenv(EnvRoots, "a, b")
	t.Setenv(EnvExtensions, "ts,tsx")
	t.Setenv(EnvMaxWorkers, "7")
	t.Setenv(EnvCacheDir, "cache")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}, cfg.Roots)
	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Extensions)
	assert.Equal(t, 7, cfg.MaxWorkers)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.Cache.Dir)
}

func TestDotEnvIsLoadedFromWorkDir(t *testing.T) {
	clearEnv(t)
	// Unset so .env may set it; t.Setenv restores the previous value afterwards.
	require.NoError(t, os.Unsetenv(EnvMaxWorkers))

	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, ".env"), "REACH_MAX_WORKERS=5\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxWorkers)
}

func TestMalformedDotEnvIsReported(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, ".env"), "BAD-KEY=1\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join(dir, ".env"))
}

func TestInvalidWorkerCountFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxWorkers, "many")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxWorkers)
}

func TestInvalidConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "reach.yml"), "roots: [unclosed\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")

	mustWriteFile(t, filepath.Join(dir, "reach.yml"), "directory_entry: lib/index\n")
	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bare file name")
}

func TestApplyOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "reach.yml"), "extensions: [.js]\ncache:\n  enabled: true\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	err = cfg.Apply(Overrides{
		Roots:      []string{"pkg"},
		Extensions: []string{"mjs"},
		Workers:    3,
		NoCache:    true,
	}, filepath.Join(dir, "cwd"))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "cwd", "pkg")}, cfg.Roots)
	assert.Equal(t, []string{".mjs"}, cfg.Extensions)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.False(t, cfg.Cache.Enabled)

	require.NoError(t, cfg.Apply(Overrides{}, dir))
	assert.Equal(t, []string{".mjs"}, cfg.Extensions)
}

func TestLoadFileUsesExplicitPath(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "conf", "custom.yml"), "roots: [..]\n")

	cfg, err := LoadFile(dir, filepath.Join(dir, "conf", "custom.yml"))
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, cfg.Roots)

	_, err = LoadFile(dir, filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
