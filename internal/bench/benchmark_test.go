package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/morozRed/reach/internal/extract"
	"github.com/morozRed/reach/internal/graph"
	"github.com/morozRed/reach/internal/index"
	"github.com/morozRed/reach/internal/resolve"
	"github.com/morozRed/reach/internal/state"
)

func BenchmarkCrawlAndBuild_MediumRepo(b *testing.B) {
	root := b.TempDir()
	createSyntheticJSRepo(b, root, 250)
	registry := extract.NewDefaultRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx, _, err := index.Build(index.Options{Roots: []string{root}, Extensions: []string{".js"}})
		if err != nil {
			b.Fatalf("crawl failed: %v", err)
		}
		resolver, err := resolve.New(idx, resolve.Options{Extensions: idx.Extensions(), CacheSize: 1024})
		if err != nil {
			b.Fatalf("resolver failed: %v", err)
		}
		entry := filepath.Join(idx.Roots()[0], "pkg0", "file_000.js")
		result, err := graph.Build(entry, idx, resolver.Resolve, registry.Extract)
		if err != nil {
			b.Fatalf("build failed: %v", err)
		}
		if result.Len() != 250 {
			b.Fatalf("expected 250 reachable files, got %d", result.Len())
		}
	}
}

func BenchmarkCrawl_WithSnapshot(b *testing.B) {
	root := b.TempDir()
	createSyntheticJSRepo(b, root, 250)

	opts := index.Options{Roots: []string{root}, Extensions: []string{".js"}}
	idx, _, err := index.Build(opts)
	if err != nil {
		b.Fatalf("crawl failed: %v", err)
	}
	opts.Cache = state.FromIndex("bench", idx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, stats, err := index.Build(opts)
		if err != nil {
			b.Fatalf("crawl failed: %v", err)
		}
		if stats.Reused != 250 {
			b.Fatalf("expected every file reused, got %d", stats.Reused)
		}
	}
}

// createSyntheticJSRepo writes a chain file_000 -> file_001 -> ... with every
// tenth file also requiring a module by name.
func createSyntheticJSRepo(tb testing.TB, root string, files int) {
	tb.Helper()

	for i := 0; i < files; i++ {
		dir := filepath.Join(root, fmt.Sprintf("pkg%d", i%10))
		if err := os.MkdirAll(dir, 0755); err != nil {
			tb.Fatalf("mkdir failed: %v", err)
		}

		src := fmt.Sprintf("/** @providesModule Mod%d */\n", i)
		if i+1 < files {
			src += fmt.Sprintf("const next = require('../pkg%d/file_%03d');\n", (i+1)%10, i+1)
		}
		if i%10 == 0 {
			src += "import first from 'Mod0';\n"
		}
		src += fmt.Sprintf("module.exports = %d;\n", i)

		filePath := filepath.Join(dir, fmt.Sprintf("file_%03d.js", i))
		if err := os.WriteFile(filePath, []byte(src), 0644); err != nil {
			tb.Fatalf("write failed: %v", err)
		}
	}
}
