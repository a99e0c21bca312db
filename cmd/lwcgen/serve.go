package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/recera/lwcgen/cmd/lwcgen/internal/config"
	"github.com/recera/lwcgen/cmd/lwcgen/internal/playground"
	"github.com/recera/lwcgen/cmd/lwcgen/internal/ui"
	"github.com/recera/lwcgen/internal/build"
)

func newServeCommand() *cobra.Command {
	var flags buildFlags
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve [directories...]",
		Short: "Start the compile playground",
		Long: `Serves POST /compile for ad-hoc compilation and GET /ws, which pushes
the output of every watched component file when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Serve.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Serve.Port = port
			}
			if len(args) == 0 {
				args = cfg.Include
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runServe(ctx, cmd, cfg, args)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&host, "host", "", "Server host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, watchPaths []string) error {
	log := slog.Default()
	runner, closeCache := newRunner(cfg)
	defer closeCache()

	server := playground.New(cfg.CompilerOptions(), log)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var existing []string
	for _, p := range watchPaths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		} else {
			log.Warn("not watching missing path", "path", p)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info("playground listening on http://"+httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if len(existing) > 0 {
		g.Go(func() error {
			return runner.Watch(ctx, existing, func(results []build.Result) {
				report(cmd, results)
				server.Broadcast(results)
			})
		})
	}
	return g.Wait()
}
