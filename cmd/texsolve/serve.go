package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history/retention"
	"mercator-hq/texsolve/pkg/ltp"
	sectls "mercator-hq/texsolve/pkg/security/tls"
	"mercator-hq/texsolve/pkg/server"
	"mercator-hq/texsolve/pkg/telemetry/health"
	"mercator-hq/texsolve/pkg/telemetry/metrics"
	"mercator-hq/texsolve/pkg/telemetry/tracing"
)

type serveOptions struct {
	listenAddress string
	dryRun        bool
}

// probeMarkup is converted by the readiness check.
const probeMarkup = `\frac{1}{2}`

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP conversion API",
		Long: `Start the HTTP API.

Endpoints:
  POST /v1/convert        convert {"input": "..."}
  POST /v1/clean          run only the cleaning stage
  GET  /v1/history        query recorded conversions
  GET  /v1/history/{id}   fetch one recorded conversion
  GET  /healthz, /readyz  liveness and readiness probes
  GET  /metrics           Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Start with default config
  texsolve serve

  # Override listen address
  texsolve serve --listen 0.0.0.0:8080

  # Validate config without starting server
  texsolve serve --dry-run`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate config without starting server")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, flags *serveOptions) error {
	cfg := root.cfg
	if flags.listenAddress != "" {
		cfg.Server.ListenAddress = flags.listenAddress
	}

	out := cmd.OutOrStdout()
	if flags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx := cmd.Context()
	logger := root.logger

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	pipe, err := root.newPipeline(collector, tracer)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		if err := pipe.Close(); err != nil {
			logger.Warn("failed to close history", "error", err)
		}
	}()

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("converter", func(ctx context.Context) error {
		_, err := ltp.Convert(probeMarkup)
		return err
	})

	opts := []server.Option{
		server.WithMetrics(collector),
		server.WithHealth(checker),
		server.WithVersion(Version, GitCommit),
		server.WithLogger(logger),
	}

	if pipe.store != nil {
		checker.RegisterCheck("history", pipe.store.Ping)
		opts = append(opts, server.WithHistory(pipe.store))

		pruner := retention.NewPruner(pipe.store, &cfg.History.Retention)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start history retention", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				logger.Debug("history retention scheduled", "next_pruning", next)
			}
		}
	}

	if cfg.Server.TLS.Enabled {
		reloader := sectls.NewCertificateReloader(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile, cfg.Server.TLS.ReloadInterval, logger)
		if err := reloader.Start(ctx); err != nil {
			return cli.NewConfigError("server.tls", err.Error())
		}
		tlsConfig, err := sectls.ServerConfig(&cfg.Server.TLS, reloader)
		if err != nil {
			return cli.NewConfigError("server.tls", err.Error())
		}
		opts = append(opts, server.WithTLS(tlsConfig))
	}

	srv := server.New(cfg, pipe.engine, opts...)

	ln, err := net.Listen("tcp", cfg.Server.ListenAddress)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	printBanner(cmd, cfg, ln.Addr())
	if err := srv.Serve(ctx, ln); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config, addr net.Addr) {
	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "texsolve v%s\n", Version)
	fmt.Fprintf(out, "✓ Server listening on %s\n", addr)
	fmt.Fprintf(out, "✓ Health endpoint: %s://%s%s\n", scheme, addr, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s://%s%s\n", scheme, addr, cfg.Telemetry.Metrics.Path)
	}
	if rl := cfg.Server.RateLimit; rl.Enabled() {
		fmt.Fprintf(out, "✓ Rate limit: %.2f req/s per client, burst %d, max concurrent %d\n",
			rl.RequestsPerSecond, rl.Burst, rl.MaxConcurrent)
	}
	if cfg.History.IsEnabled() {
		fmt.Fprintf(out, "✓ History: %s\n", cfg.History.Backend)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
