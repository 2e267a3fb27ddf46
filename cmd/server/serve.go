package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"certifly/internal/platform/config"
	"certifly/internal/platform/httpserver"
	"certifly/internal/platform/logger"
)

func serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.Log)
	log.InfoContext(ctx, "starting "+programName,
		"environment", cfg.Environment,
		"addr", cfg.Server.Addr,
	)

	a, err := build(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "startup failed", "error", err)
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srv := httpserver.New(cfg.Server.Addr, a.handler)
		return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	if a.pgTRL != nil {
		g.Go(func() error {
			ticker := time.NewTicker(revocationPurgeEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					n, err := a.pgTRL.PurgeExpired(ctx)
					if err != nil {
						log.WarnContext(ctx, "failed to purge expired revocations", "error", err)
						continue
					}
					log.DebugContext(ctx, "purged expired revocations", "count", n)
				}
			}
		})
	}

	if a.buckets != nil {
		g.Go(func() error {
			ticker := time.NewTicker(bucketSweepEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					a.buckets.Sweep()
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "server stopped", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
