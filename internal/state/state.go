// Package state persists crawl snapshots so unchanged files skip docblock
// parsing on the next run.
package state

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"

	"github.com/morozRed/reach/internal/fileutil"
	"github.com/morozRed/reach/internal/index"
)

const (
	SnapshotFile   = "snapshot.json.zst"
	CurrentVersion = "1"
)

// FileState is what the snapshot remembers about one indexed file.
type FileState struct {
	ModTime    time.Time `json:"mtime"`
	Size       int64     `json:"size"`
	ModuleName string    `json:"module_name,omitempty"`
}

// Snapshot is the persisted result of one crawl. Key identifies the crawl
// configuration it was taken under.
type Snapshot struct {
	Version   string               `json:"version"`
	Key       string               `json:"key"`
	UpdatedAt time.Time            `json:"updated_at"`
	Files     map[string]FileState `json:"files"`
}

// KeyInput is the crawl configuration a snapshot is valid for.
type KeyInput struct {
	Roots            []string
	Extensions       []string
	IgnoreRules      []string
	RespectGitignore bool
}

// Key digests in with BLAKE3. Any configuration change yields a new key.
func Key(in KeyInput) string {
	var b strings.Builder
	b.WriteString("v" + CurrentVersion + "\n")
	for _, section := range [][]string{in.Roots, in.Extensions, in.IgnoreRules} {
		b.WriteString(strings.Join(section, "\x00"))
		b.WriteString("\n")
	}
	if in.RespectGitignore {
		b.WriteString("gitignore\n")
	}
	return fileutil.HashBytes([]byte(b.String()))
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot(key string) *Snapshot {
	return &Snapshot{
		Version: CurrentVersion,
		Key:     key,
		Files:   make(map[string]FileState),
	}
}

// FromIndex records every file of idx.
func FromIndex(key string, idx *index.FileIndex) *Snapshot {
	s := NewSnapshot(key)
	for _, path := range idx.GetAllFiles() {
		record, _ := idx.Record(path)
		s.Files[path] = FileState{
			ModTime:    record.ModTime,
			Size:       record.Size,
			ModuleName: record.ModuleName,
		}
	}
	return s
}

// Load reads the snapshot in dir. A missing, unreadable or stale snapshot
// (different version or key) yields an empty one; only I/O errors other
// than a missing file are returned.
func Load(dir, key string) (*Snapshot, error) {
	path := filepath.Join(dir, SnapshotFile)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(key), nil
		}
		return nil, eris.Wrapf(err, "failed to open snapshot %s", path)
	}
	defer f.Close()

	decoder, err := zstd.NewReader(f)
	if err != nil {
		return NewSnapshot(key), nil
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return NewSnapshot(key), nil
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return NewSnapshot(key), nil
	}
	if s.Version != CurrentVersion || s.Key != key || s.Files == nil {
		return NewSnapshot(key), nil
	}
	return &s, nil
}

// Save writes the snapshot into dir, creating it if needed. The file is
// replaced atomically.
func (s *Snapshot) Save(dir string) error {
	if s.Version == "" {
		s.Version = CurrentVersion
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "failed to encode snapshot")
	}

	var compressed bytes.Buffer
	encoder, err := zstd.NewWriter(&compressed)
	if err != nil {
		return eris.Wrap(err, "failed to create zstd encoder")
	}
	if _, err := encoder.Write(data); err != nil {
		encoder.Close()
		return eris.Wrap(err, "failed to compress snapshot")
	}
	if err := encoder.Close(); err != nil {
		return eris.Wrap(err, "failed to compress snapshot")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return eris.Wrapf(err, "failed to create cache dir %s", dir)
	}
	path := filepath.Join(dir, SnapshotFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed.Bytes(), 0644); err != nil {
		return eris.Wrapf(err, "failed to write snapshot %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "failed to replace snapshot %s", path)
	}
	return nil
}

// Lookup implements index.Cache: a hit requires identical mtime and size.
func (s *Snapshot) Lookup(path string, modTime time.Time, size int64) (index.FileRecord, bool) {
	fs, ok := s.Files[path]
	if !ok || fs.Size != size || !fs.ModTime.Equal(modTime) {
		return index.FileRecord{}, false
	}
	return index.FileRecord{
		Path:       path,
		ModuleName: fs.ModuleName,
		ModTime:    fs.ModTime,
		Size:       fs.Size,
	}, true
}

// Diff compares the snapshot with a fresh index. changed holds new or
// modified files, deleted holds files that are no longer indexed; both sorted.
func (s *Snapshot) Diff(idx *index.FileIndex) (changed, deleted []string) {
	changed = make([]string, 0)
	current := make(map[string]bool, idx.Len())
	for _, path := range idx.GetAllFiles() {
		current[path] = true
		record, _ := idx.Record(path)
		prev, ok := s.Files[path]
		if !ok || prev.Size != record.Size || !prev.ModTime.Equal(record.ModTime) {
			changed = append(changed, path)
		}
	}

	deleted = make([]string, 0)
	for path := range s.Files {
		if !current[path] {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(deleted)
	return changed, deleted
}
