package index

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	gitignore "github.com/denormal/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/morozRed/reach/internal/ignore"
)

// Cache hands back records from an earlier crawl so unchanged files are not
// re-read. Lookup must be safe for concurrent use.
type Cache interface {
	Lookup(path string, modTime time.Time, size int64) (FileRecord, bool)
}

// Options configures Build.
type Options struct {
	Roots      []string
	Extensions []string
	// IgnoreRules are user rules layered over ignore.DefaultRules.
	IgnoreRules []string
	// RespectGitignore applies each root's top-level .gitignore.
	RespectGitignore bool
	// MaxWorkers bounds concurrent subtree scans; <= 0 means runtime.NumCPU().
	MaxWorkers int
	Cache      Cache
	// OnFile is called from crawl workers for every recorded file.
	OnFile func(path string)
}

// Stats reports how a crawl went.
type Stats struct {
	Files  int
	Reused int
	Tasks  int
}

type crawlTask struct {
	root      string
	dir       string
	recursive bool
	gitignore gitignore.GitIgnore
}

type taskResult struct {
	records []FileRecord
	reused  int
}

type crawler struct {
	extensions []string
	matcher    *ignore.Matcher
	cache      Cache
	onFile     func(string)
}

// Build crawls every root and returns the merged index. Each root's direct
// files form one task and each top-level subdirectory forms another; tasks
// run on a bounded worker pool and their records are merged only after every
// worker has finished, so duplicate detection does not depend on scheduling.
func Build(opts Options) (*FileIndex, Stats, error) {
	extensions := NormalizeExtensions(opts.Extensions)
	if len(extensions) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: no file extensions configured", ErrIndex)
	}
	if len(opts.Roots) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: no roots configured", ErrIndex)
	}

	c := &crawler{
		extensions: extensions,
		matcher:    ignore.NewMatcher(opts.IgnoreRules),
		cache:      opts.Cache,
		onFile:     opts.OnFile,
	}

	roots := make([]string, 0, len(opts.Roots))
	tasks := make([]crawlTask, 0)
	for _, root := range opts.Roots {
		canonical, err := CanonicalPath(root)
		if err != nil {
			return nil, Stats{}, &CrawlError{Path: root, Err: err}
		}
		rootTasks, err := c.plan(canonical, opts.RespectGitignore)
		if err != nil {
			return nil, Stats{}, err
		}
		roots = append(roots, canonical)
		tasks = append(tasks, rootTasks...)
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]taskResult, len(tasks))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, task := range tasks {
		g.Go(func() error {
			res, err := c.scan(task)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Tasks: len(tasks)}
	records := make([]FileRecord, 0)
	for _, res := range results {
		records = append(records, res.records...)
		stats.Reused += res.reused
	}

	idx, err := New(roots, extensions, records)
	if err != nil {
		return nil, Stats{}, err
	}
	stats.Files = idx.Len()
	return idx, stats, nil
}

func (c *crawler) plan(root string, respectGitignore bool) ([]crawlTask, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &CrawlError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &CrawlError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	var gi gitignore.GitIgnore
	if respectGitignore {
		gi, err = loadGitignore(root)
		if err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &CrawlError{Path: root, Err: err}
	}

	tasks := []crawlTask{{root: root, dir: root, recursive: false, gitignore: gi}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if c.skip(root, dir, true, gi) {
			continue
		}
		tasks = append(tasks, crawlTask{root: root, dir: dir, recursive: true, gitignore: gi})
	}
	return tasks, nil
}

func loadGitignore(root string) (gitignore.GitIgnore, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &CrawlError{Path: path, Err: err}
	}
	gi, err := gitignore.NewFromFile(path)
	if err != nil {
		return nil, &CrawlError{Path: path, Err: err}
	}
	return gi, nil
}

func (c *crawler) skip(root, path string, isDir bool, gi gitignore.GitIgnore) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if c.matcher.ShouldIgnore(rel, isDir) {
		return true
	}
	if gi != nil {
		if m := gi.Relative(filepath.ToSlash(rel), isDir); m != nil && m.Ignore() {
			return true
		}
	}
	return false
}

func (c *crawler) scan(task crawlTask) (taskResult, error) {
	var res taskResult

	visit := func(path string, d fs.DirEntry) error {
		record, reused, ok, err := c.record(task.root, path, d)
		if err != nil || !ok {
			return err
		}
		if reused {
			res.reused++
		}
		res.records = append(res.records, record)
		if c.onFile != nil {
			c.onFile(path)
		}
		return nil
	}

	if !task.recursive {
		entries, err := os.ReadDir(task.dir)
		if err != nil {
			return res, &CrawlError{Path: task.dir, Err: err}
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(task.dir, entry.Name())
			if c.skip(task.root, path, false, task.gitignore) {
				continue
			}
			if err := visit(path, entry); err != nil {
				return res, err
			}
		}
		return res, nil
	}

	err := filepath.WalkDir(task.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &CrawlError{Path: path, Err: err}
		}
		if c.skip(task.root, path, d.IsDir(), task.gitignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return visit(path, d)
	})
	return res, err
}

// record builds the FileRecord for one directory entry. ok is false for
// entries that are not indexed: symlinks, special files, other extensions.
func (c *crawler) record(root, path string, d fs.DirEntry) (record FileRecord, reused, ok bool, err error) {
	if !d.Type().IsRegular() || !c.hasExtension(d.Name()) {
		return FileRecord{}, false, false, nil
	}

	info, err := d.Info()
	if err != nil {
		return FileRecord{}, false, false, &CrawlError{Path: path, Err: err}
	}

	if c.cache != nil {
		if cached, hit := c.cache.Lookup(path, info.ModTime(), info.Size()); hit {
			cached.Path = path
			cached.Root = root
			return cached, true, true, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return FileRecord{}, false, false, &CrawlError{Path: path, Err: err}
	}
	return FileRecord{
		Path:       path,
		Root:       root,
		ModuleName: ParseModuleName(content),
		ModTime:    info.ModTime(),
		Size:       info.Size(),
	}, false, true, nil
}

func (c *crawler) hasExtension(name string) bool {
	for _, ext := range c.extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}
