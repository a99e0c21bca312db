package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/lwcgen/cmd/lwcgen/internal/config"
	"github.com/recera/lwcgen/cmd/lwcgen/internal/ui"
	"github.com/recera/lwcgen/internal/build"
	"github.com/recera/lwcgen/internal/cache"
)

// buildFlags are the flags shared by compile and serve.
type buildFlags struct {
	configPath string
	outDir     string
	jobs       int
	stateType  string
	typescript bool
	prettier   bool
	noCache    bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Configuration file (default: lwcgen.yaml in the working directory)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "Output directory")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Concurrent compilations")
	cmd.Flags().StringVar(&f.stateType, "state-type", "", "State declaration style: variables or proxies")
	cmd.Flags().BoolVar(&f.typescript, "typescript", false, "Emit TypeScript")
	cmd.Flags().BoolVar(&f.prettier, "prettier", true, "Format the output")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Disable the output cache")
}

// load reads the configuration and overlays the flags the user set.
func (f *buildFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
		path = f.configPath
	} else {
		cfg, path, err = config.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if path != "" {
		slog.Debug("loaded configuration", "path", path)
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutDir = f.outDir
	}
	if flags.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if flags.Changed("state-type") {
		cfg.StateType = f.stateType
	}
	if flags.Changed("typescript") {
		cfg.TypeScript = f.typescript
	}
	if flags.Changed("prettier") {
		cfg.Prettier = f.prettier
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRunner builds a runner for cfg. The returned func releases the cache.
func newRunner(cfg *config.Config) (*build.Runner, func()) {
	log := slog.Default()
	var c *cache.Cache
	if cfg.Cache.Enabled {
		cacheCfg := cache.DefaultConfig()
		if cfg.Cache.Dir != "" {
			cacheCfg.Dir = cfg.Cache.Dir
		}
		cacheCfg.MaxAge = cfg.CacheMaxAge()
		cacheCfg.Logger = log
		var err error
		c, err = cache.New(cacheCfg)
		if err != nil {
			// continue without cache
			log.Warn("failed to open output cache", "error", err)
			c = nil
		}
	}

	runner := build.New(build.Config{
		Options: cfg.CompilerOptions(),
		OutDir:  cfg.OutDir,
		Jobs:    cfg.Jobs,
		Cache:   c,
		Logger:  log,
	})
	return runner, func() {
		if c == nil {
			return
		}
		if err := c.Close(); err != nil {
			log.Warn("failed to save output cache", "error", err)
		}
	}
}

func newCompileCommand() *cobra.Command {
	var flags buildFlags
	var watch bool

	cmd := &cobra.Command{
		Use:   "compile [files or directories...]",
		Short: "Compile component files into LWC output",
		Long: `Compiles .json, .yaml and .yml component files into <outDir>/<name>.lwc.
Without arguments the include paths of the configuration are compiled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = cfg.Include
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runCompile(ctx, cmd, cfg, args, watch)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile when files change")
	return cmd
}

func runCompile(ctx context.Context, cmd *cobra.Command, cfg *config.Config, paths []string, watch bool) error {
	runner, closeCache := newRunner(cfg)
	defer closeCache()

	files, err := build.Discover(paths)
	if err != nil {
		return fmt.Errorf("failed to find components: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, ui.Info("no component files found"))
	}

	start := time.Now()
	results, err := runner.CompileAll(ctx, files)
	report(cmd, results)
	if len(files) > 0 {
		failed := countFailed(results)
		fmt.Fprintln(out, ui.Summary(len(results)-failed, failed, time.Since(start)))
	}
	if !watch {
		if err != nil {
			return errors.New("compilation failed")
		}
		return nil
	}

	fmt.Fprintln(out, ui.Info("watching for changes, press Ctrl+C to stop"))
	return runner.Watch(ctx, paths, func(results []build.Result) {
		report(cmd, results)
	})
}

func report(cmd *cobra.Command, results []build.Result) {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Failed(res.Source, res.Err))
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Compiled(res.Source, res.Output, res.Cached))
	}
}

func countFailed(results []build.Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
