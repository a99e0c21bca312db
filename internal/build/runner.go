// Package build compiles component files on disk into LWC output files,
// concurrently and with an optional output cache.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/recera/lwcgen/internal/cache"
	"github.com/recera/lwcgen/pkg/compiler"
	"github.com/recera/lwcgen/pkg/ir"
)

// OutputExt is the extension of generated files.
const OutputExt = ".lwc"

const debounceDelay = 100 * time.Millisecond

// Config configures a Runner.
type Config struct {
	Options compiler.Options
	OutDir  string
	Jobs    int
	// Cache is optional.
	Cache  *cache.Cache
	Logger *slog.Logger
}

// Runner compiles component files.
type Runner struct {
	opts        compiler.Options
	outDir      string
	jobs        int
	cache       *cache.Cache
	log         *slog.Logger
	fingerprint string
}

// Result describes the compilation of one file.
type Result struct {
	Source string
	Output string
	Code   string
	Cached bool
	Err    error
}

// New returns a Runner for cfg.
func New(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger
	}
	return &Runner{
		opts:        cfg.Options,
		outDir:      cfg.OutDir,
		jobs:        cfg.Jobs,
		cache:       cfg.Cache,
		log:         cfg.Logger.With("component", "build"),
		fingerprint: fingerprint(cfg.Options),
	}
}

// fingerprint identifies the options that change generated output.
func fingerprint(opts compiler.Options) string {
	parts := []string{
		"state=" + string(opts.StateType),
		"ts=" + strconv.FormatBool(opts.TypeScript),
		"prettier=" + strconv.FormatBool(opts.Prettier),
	}
	for _, p := range opts.Plugins {
		parts = append(parts, "plugin="+p.Name)
	}
	if opts.Dialect != nil {
		parts = append(parts, "dialect="+opts.Dialect.Name)
	}
	return strings.Join(parts, ";")
}

// IsSource reports whether path looks like a component file.
func IsSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Discover expands paths into the sorted list of component files they name.
// Directories are walked recursively, skipping hidden ones.
func Discover(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSource(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath returns where the output of source is written.
func (r *Runner) OutputPath(source string) string {
	base := filepath.Base(source)
	return filepath.Join(r.outDir, strings.TrimSuffix(base, filepath.Ext(base))+OutputExt)
}

// Compile compiles one component file and writes its output.
func (r *Runner) Compile(source string) Result {
	res := Result{Source: source, Output: r.OutputPath(source)}

	data, err := os.ReadFile(source)
	if err != nil {
		res.Err = fmt.Errorf("failed to read file: %w", err)
		return res
	}

	key := cache.Key(r.fingerprint, filepath.Base(source), string(data))
	if r.cache != nil {
		if out, ok := r.cache.Get(key); ok {
			res.Code, res.Cached = string(out), true
		}
	}

	if !res.Cached {
		c, err := ir.ReadFile(source)
		if err != nil {
			res.Err = err
			return res
		}
		code, err := compiler.Generate(c, r.opts)
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", source, err)
			return res
		}
		res.Code = code
		if r.cache != nil {
			if err := r.cache.Put(key, source, []byte(code)); err != nil {
				r.log.Warn("failed to cache output", "source", source, "error", err)
			}
		}
	}

	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		res.Err = fmt.Errorf("failed to create output directory: %w", err)
		return res
	}
	if err := os.WriteFile(res.Output, []byte(res.Code), 0o644); err != nil {
		res.Err = fmt.Errorf("failed to write output: %w", err)
		return res
	}
	r.log.Debug("compiled", "source", source, "output", res.Output, "cached", res.Cached)
	return res
}

// CompileAll compiles files with at most Jobs compilations in flight.
// Results keep the order of files. The error joins every failed result.
func (r *Runner) CompileAll(ctx context.Context, files []string) ([]Result, error) {
	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Source: file, Output: r.OutputPath(file), Err: err}
				return err
			}
			results[i] = r.Compile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Watch recompiles component files under paths when they change and hands
// each batch of results to fn. Events are debounced. It returns when ctx
// is done.
func (r *Runner) Watch(ctx context.Context, paths []string, fn func([]Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := addWatch(watcher, p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	r.log.Info("watching for changes", "paths", paths)

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	pending := map[string]bool{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatch(watcher, event.Name); err != nil {
						r.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !IsSource(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = true
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", "error", err)

		case <-debounce.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			pending = map[string]bool{}
			if len(files) == 0 {
				continue
			}
			sort.Strings(files)
			if r.cache != nil {
				for _, f := range files {
					r.cache.InvalidateSource(f)
				}
			}
			results, err := r.CompileAll(ctx, files)
			if err != nil {
				r.log.Warn("recompilation failed", "error", err)
			}
			fn(results)
		}
	}
}

// addWatch watches path, and every directory below it when it is one.
func addWatch(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
