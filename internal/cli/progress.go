package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const progressRedrawInterval = 80 * time.Millisecond

// progress redraws a single "phase: count[/total] path" line while crawl
// workers or the graph builder report files. A nil *progress is silent.
type progress struct {
	w       io.Writer
	phase   string
	total   int
	baseDir string
	start   time.Time

	mu        sync.Mutex
	count     int
	lastDraw  time.Time
	lineWidth int
}

// newProgress returns nil unless stderr is a terminal and output is not JSON.
func (s *settings) newProgress(phase string, total int, asJSON bool) *progress {
	if asJSON || !isTerminal(s.stderr) {
		return nil
	}
	return newProgressWriter(s.stderr, phase, total, s.workDir)
}

func newProgressWriter(w io.Writer, phase string, total int, baseDir string) *progress {
	return &progress{w: w, phase: phase, total: total, baseDir: baseDir, start: time.Now()}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

// Tick counts path and redraws at most once per progressRedrawInterval.
func (p *progress) Tick(path string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	now := time.Now()
	if !p.lastDraw.IsZero() && now.Sub(p.lastDraw) < progressRedrawInterval {
		return
	}
	p.lastDraw = now

	counter := fmt.Sprintf("%d", p.count)
	if p.total > 0 {
		counter = fmt.Sprintf("%d/%d", p.count, p.total)
	}
	p.draw(fmt.Sprintf("%s: %s %s", p.phase, counter, p.display(path)))
}

// Done replaces the line with the final count and ends it.
func (p *progress) Done(files int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.draw(fmt.Sprintf("%s: %d files in %s", p.phase, files, time.Since(p.start).Round(time.Millisecond)))
	fmt.Fprintln(p.w)
}

func (p *progress) display(path string) string {
	if rel, err := filepath.Rel(p.baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	if len(path) > 72 {
		path = "..." + path[len(path)-69:]
	}
	return path
}

func (p *progress) draw(line string) {
	pad := ""
	if p.lineWidth > len(line) {
		pad = strings.Repeat(" ", p.lineWidth-len(line))
	}
	p.lineWidth = len(line)
	fmt.Fprintf(p.w, "\r%s%s", line, pad)
}
