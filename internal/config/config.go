// Package config loads reach.yml, .env and REACH_* overrides.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/morozRed/reach/internal/index"
	"github.com/morozRed/reach/internal/resolve"
)

const (
	DefaultCacheDir          = ".reach"
	DefaultResolverCacheSize = 4096
)

// FileNames are tried in order in every directory from the working
// directory up to the file system root.
var FileNames = []string{"reach.yml", "reach.yaml"}

// DefaultExtensions is the indexed extension list when none is configured.
var DefaultExtensions = []string{".js"}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("reach.yml or reach.yaml not found")

// Environment overrides.
const (
	EnvRoots      = "REACH_ROOTS"
	EnvExtensions = "REACH_EXTENSIONS"
	EnvMaxWorkers = "REACH_MAX_WORKERS"
	EnvCacheDir   = "REACH_CACHE_DIR"
)

type Config struct {
	Roots             []string    `yaml:"roots"`
	Extensions        []string    `yaml:"extensions"`
	DirectoryEntry    string      `yaml:"directory_entry"`
	Ignore            []string    `yaml:"ignore"`
	RespectGitignore  bool        `yaml:"respect_gitignore"`
	MaxWorkers        int         `yaml:"max_workers"`
	ResolverCacheSize int         `yaml:"resolver_cache_size"`
	Cache             CacheConfig `yaml:"cache"`

	// Path is the config file that was read, empty when defaults were used.
	Path string `yaml:"-"`
	// BaseDir anchors relative roots and the cache dir: the config file's
	// directory, or the working directory without one.
	BaseDir string `yaml:"-"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Overrides carries command-line flags; zero values leave the config alone.
type Overrides struct {
	Roots      []string
	Extensions []string
	Workers    int
	NoCache    bool
}

// Default returns the configuration used when no file is found.
func Default(baseDir string) *Config {
	return &Config{
		Extensions:        append([]string(nil), DefaultExtensions...),
		DirectoryEntry:    resolve.DefaultDirectoryEntry,
		ResolverCacheSize: DefaultResolverCacheSize,
		Cache: CacheConfig{
			Enabled: true,
			Dir:     DefaultCacheDir,
		},
		BaseDir: baseDir,
	}
}

// Find walks up from dir looking for a config file.
func Find(dir string) (string, error) {
	currentDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", ErrNotFound
}

// Load reads .env from workDir, the nearest config file (if any), then the
// REACH_* environment. The result is normalized.
func Load(workDir string) (*Config, error) {
	path, err := Find(workDir)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, eris.Wrap(err, "failed to find config file")
	}
	return load(workDir, path)
}

// LoadFile is Load with an explicit config file.
func LoadFile(workDir, path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve config path %s", path)
	}
	return load(workDir, abs)
}

func load(workDir, path string) (*Config, error) {
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve working directory")
	}

	// .env is optional and never overrides variables already set.
	envPath := filepath.Join(workDir, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(err, "failed to load %s", envPath)
	}

	cfg := Default(workDir)
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, eris.Wrapf(err, "failed to parse config file %s", path)
		}
		cfg.Path = path
		cfg.BaseDir = filepath.Dir(path)
	}
	cfg.Roots = absPaths(cfg.BaseDir, cfg.Roots)

	if err := cfg.applyEnv(workDir); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(workDir string) error {
	if v := os.Getenv(EnvRoots); v != "" {
		c.Roots = absPaths(workDir, splitList(v))
	}
	if v := os.Getenv(EnvExtensions); v != "" {
		c.Extensions = splitList(v)
	}
	if v := os.Getenv(EnvMaxWorkers); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return eris.Wrapf(err, "invalid %s %q", EnvMaxWorkers, v)
		}
		c.MaxWorkers = n
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = absPath(workDir, v)
	}
	return nil
}

// Apply layers command-line flags over the loaded config. Relative flag
// roots are taken from workDir.
func (c *Config) Apply(o Overrides, workDir string) error {
	if len(o.Roots) > 0 {
		c.Roots = absPaths(workDir, o.Roots)
	}
	if len(o.Extensions) > 0 {
		c.Extensions = o.Extensions
	}
	if o.Workers > 0 {
		c.MaxWorkers = o.Workers
	}
	if o.NoCache {
		c.Cache.Enabled = false
	}
	return c.normalize()
}

func (c *Config) normalize() error {
	if len(c.Roots) == 0 {
		c.Roots = []string{c.BaseDir}
	}
	c.Extensions = index.NormalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		return eris.New("no file extensions configured")
	}
	if c.DirectoryEntry == "" {
		c.DirectoryEntry = resolve.DefaultDirectoryEntry
	}
	if strings.ContainsAny(c.DirectoryEntry, `/\`) {
		return eris.Errorf("directory_entry %q must be a bare file name", c.DirectoryEntry)
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = runtime.NumCPU()
	}
	if c.ResolverCacheSize < 0 {
		c.ResolverCacheSize = 0
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir
	}
	c.Cache.Dir = absPath(c.BaseDir, c.Cache.Dir)
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func absPaths(base string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, absPath(base, p))
	}
	return out
}

func absPath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
