package cli

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/morozRed/reach/internal/index"
	"github.com/morozRed/reach/internal/state"
)

// RunStatus crawls without the snapshot and reports what differs from it.
// The snapshot itself is left untouched.
func RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	snapshot, err := state.Load(s.cfg.Cache.Dir, s.snapshotKey())
	if err != nil {
		return eris.Wrap(err, "failed to load crawl snapshot")
	}

	progress := s.newProgress("status", 0, asJSON)
	opts := s.crawlOptions()
	opts.OnFile = progress.Tick
	idx, _, err := index.Build(opts)
	if err != nil {
		return eris.Wrap(err, "failed to index project")
	}
	progress.Done(idx.Len())

	changed, deleted := snapshot.Diff(idx)
	summary := StatusSummary{
		CacheDir:     s.cfg.Cache.Dir,
		Snapshot:     len(snapshot.Files) > 0,
		Scanned:      idx.Len(),
		Changed:      len(changed),
		Deleted:      len(deleted),
		Unchanged:    idx.Len() - len(changed),
		DurationMS:   time.Since(start).Milliseconds(),
		ChangedFiles: changed,
		DeletedFiles: deleted,
	}
	return PrintStatusSummary(cmd.OutOrStdout(), summary, asJSON)
}
