package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moorberry/gridline/internal/datasource"
	"github.com/moorberry/gridline/pkg/cache"
	"github.com/moorberry/gridline/pkg/config"
	"github.com/moorberry/gridline/pkg/debug"
	"github.com/moorberry/gridline/pkg/model"
	"github.com/moorberry/gridline/pkg/store"
	"github.com/moorberry/gridline/pkg/tasks"
	"github.com/moorberry/gridline/pkg/ui"
	"github.com/moorberry/gridline/pkg/version"
	"github.com/moorberry/gridline/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	versionFlag := flag.Bool("version", false, "Show version")
	helpFlag := flag.Bool("help", false, "Show help")
	listFlag := flag.Bool("list", false, "List loadable files in the given directory and exit")
	saveFlag := flag.String("save", "", "Convert the input to the given output file and exit")
	delimiter := flag.String("delimiter", "", "Field delimiter for text files (single character)")
	table := flag.String("table", "", "Sheet or table name for xlsx/sqlite inputs")
	noWatch := flag.Bool("no-watch", false, "Disable auto-reload when the file changes")
	pollInterval := flag.Duration("poll", 0, "Polling interval override for watch fallback mode")
	noCache := flag.Bool("no-cache", false, "Bypass the table cache")
	flag.Parse()

	if *helpFlag {
		fmt.Println("Usage: gridline [options] <file>")
		fmt.Println("\nAn interactive browser for tabular files (csv, tsv, txt, xlsx, sqlite).")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("gridline %s\n", version.Version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: gridline [options] <file>")
		os.Exit(2)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		fatalf("resolving %s: %v", args[0], err)
	}

	if *listFlag {
		listDir(path)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load failed, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	opts := datasource.Options{Table: *table}
	if *delimiter != "" {
		r := []rune(*delimiter)
		if len(r) != 1 {
			fatalf("delimiter must be a single character, got %q", *delimiter)
		}
		opts.Delimiter = r[0]
	}

	// Headless conversion path: no cache, no TUI.
	if *saveFlag != "" {
		convert(path, *saveFlag, opts)
		return
	}

	var tableCache *cache.Cache[model.Table]
	if !*noCache {
		tableCache, err = cache.New[model.Table](cfg.Cache.Dir, cache.WithTTL(cfg.Cache.TTL))
		if err != nil {
			fatalf("opening cache dir: %v", err)
		}
		// The one startup step that refuses to continue: a cache dir we can
		// neither read nor repair means every Set would fail too.
		if err := tableCache.Load(); err != nil {
			fatalf("%v", err)
		}
	}

	t, fromCache := loadTable(tableCache, path, opts)

	st := store.New(store.WithWarnf(debug.Log))
	if err := st.Load(t.Rows, t.Headers); err != nil {
		fatalf("loading %s: %v", path, err)
	}

	queue := tasks.New()
	if err := queue.Start(); err != nil {
		fatalf("starting worker: %v", err)
	}

	var w *watcher.Watcher
	if cfg.Watch.Enabled && !*noWatch {
		interval := cfg.Watch.PollInterval
		if *pollInterval > 0 {
			interval = *pollInterval
		}
		w, err = watcher.New(path,
			watcher.WithDebounce(cfg.Watch.Debounce),
			watcher.WithPollInterval(interval),
			watcher.WithOnError(func(err error) { debug.Log("watch: %v", err) }),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
			w = nil
		}
	}

	cfg.RememberFile(path)
	if err := config.Save(cfg); err != nil {
		debug.Log("saving config: %v", err)
	}

	m := ui.New(&cfg, st, queue, tableCache, w, path)
	if !fromCache && tableCache != nil {
		tableCache.Set(path, t)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	if w != nil {
		w.Stop()
	}
	queue.Stop()
	if tableCache != nil {
		if err := tableCache.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache save failed: %v\n", err)
		}
	}
	if runErr != nil {
		fatalf("%v", runErr)
	}
}

// loadTable prefers a fresh cache entry and falls back to reading the file.
func loadTable(c *cache.Cache[model.Table], path string, opts datasource.Options) (model.Table, bool) {
	if c != nil {
		if t, ok := c.Get(path); ok {
			debug.Log("main: %s served from cache", path)
			return t, true
		}
	}
	started := time.Now()
	t, err := datasource.LoadFile(path, opts)
	if err != nil {
		fatalf("loading %s: %v", path, err)
	}
	debug.LogTiming("main: load "+filepath.Base(path), time.Since(started))
	return t, false
}

// convert reads the input and writes it back out in the format the output
// extension implies.
func convert(in, out string, opts datasource.Options) {
	t, err := datasource.LoadFile(in, opts)
	if err != nil {
		fatalf("loading %s: %v", in, err)
	}
	if err := datasource.SaveFile(out, t, opts); err != nil {
		fatalf("writing %s: %v", out, err)
	}
	fmt.Printf("%s: %d rows, %d cols -> %s\n", filepath.Base(in), len(t.Rows), len(t.Headers), out)
}

// listDir prints the loadable files under dir, newest first.
func listDir(dir string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sources, err := datasource.DiscoverDir(ctx, dir)
	if err != nil {
		fatalf("scanning %s: %v", dir, err)
	}
	if len(sources) == 0 {
		fmt.Println("no loadable files found")
		return
	}
	for _, s := range sources {
		fmt.Println(s)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
