package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/morozRed/reach/internal/config"
	"github.com/morozRed/reach/internal/extract"
	"github.com/morozRed/reach/internal/index"
	"github.com/morozRed/reach/internal/resolve"
	"github.com/morozRed/reach/internal/state"
)

// settings is the fully layered configuration of one invocation.
type settings struct {
	cfg         *config.Config
	workDir     string
	ignoreRules []string
	verbose     bool
	stderr      io.Writer
}

// project is a crawled index plus the resolver and extractors over it.
type project struct {
	*settings
	index    *index.FileIndex
	stats    index.Stats
	resolver *resolve.Resolver
	registry *extract.Registry
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags, err := readGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}
	workDir, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if flags.configPath != "" {
		cfg, err = config.LoadFile(workDir, flags.configPath)
	} else {
		cfg, err = config.Load(workDir)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Apply(flags.overrides, workDir); err != nil {
		return nil, eris.Wrap(err, "invalid command-line overrides")
	}

	extraRules, err := LoadIgnoreRules(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	ignoreRules := make([]string, 0, len(cfg.Ignore)+len(extraRules))
	ignoreRules = append(ignoreRules, cfg.Ignore...)
	ignoreRules = append(ignoreRules, extraRules...)

	return &settings{
		cfg:         cfg,
		workDir:     workDir,
		ignoreRules: ignoreRules,
		verbose:     flags.verbose,
		stderr:      cmd.ErrOrStderr(),
	}, nil
}

func (s *settings) logf(format string, args ...any) {
	if !s.verbose {
		return
	}
	fmt.Fprintf(s.stderr, format+"\n", args...)
}

func (s *settings) snapshotKey() string {
	return state.Key(state.KeyInput{
		Roots:            s.cfg.Roots,
		Extensions:       s.cfg.Extensions,
		IgnoreRules:      s.ignoreRules,
		RespectGitignore: s.cfg.RespectGitignore,
	})
}

func (s *settings) crawlOptions() index.Options {
	return index.Options{
		Roots:            s.cfg.Roots,
		Extensions:       s.cfg.Extensions,
		IgnoreRules:      s.ignoreRules,
		RespectGitignore: s.cfg.RespectGitignore,
		MaxWorkers:       s.cfg.MaxWorkers,
	}
}

// openProject crawls the configured roots, reusing and then refreshing the
// snapshot when the cache is enabled.
func openProject(cmd *cobra.Command, asJSON bool) (*project, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	key := s.snapshotKey()
	opts := s.crawlOptions()
	if s.cfg.Cache.Enabled {
		snapshot, err := state.Load(s.cfg.Cache.Dir, key)
		if err != nil {
			fmt.Fprintf(s.stderr, "warning: ignoring crawl snapshot: %v\n", err)
		} else {
			opts.Cache = snapshot
		}
	}

	progress := s.newProgress("crawl", 0, asJSON)
	opts.OnFile = progress.Tick
	idx, stats, err := index.Build(opts)
	if err != nil {
		return nil, eris.Wrap(err, "failed to index project")
	}
	progress.Done(idx.Len())
	s.logf("crawl: %d files (%d reused) in %d tasks, %s", stats.Files, stats.Reused, stats.Tasks, time.Since(start).Round(time.Millisecond))

	if s.cfg.Cache.Enabled {
		if err := state.FromIndex(key, idx).Save(s.cfg.Cache.Dir); err != nil {
			fmt.Fprintf(s.stderr, "warning: failed to save crawl snapshot: %v\n", err)
		}
	}

	resolver, err := resolve.New(idx, resolve.Options{
		Extensions:     s.cfg.Extensions,
		DirectoryEntry: s.cfg.DirectoryEntry,
		CacheSize:      s.cfg.ResolverCacheSize,
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to create resolver")
	}

	return &project{
		settings: s,
		index:    idx,
		stats:    stats,
		resolver: resolver,
		registry: extract.NewDefaultRegistry(),
	}, nil
}
