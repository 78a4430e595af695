package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
	"github.com/teemow/handoff/internal/server"
	"github.com/teemow/handoff/internal/tools/handoff_tools"
)

// Transports served by the MCP tools.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// DefaultScanInterval is the period of scheduled scans.
const DefaultScanInterval = 15 * time.Minute

// ServeConfig holds the settings of the serve command.
type ServeConfig struct {
	Transport    string
	HTTPAddr     string
	MetricsAddr  string
	WebhookToken string
	ScanInterval time.Duration
	ScanWindow   time.Duration
	ReadOnly     bool
}

func newServeCmd() *cobra.Command {
	var cfg ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled scans, the webhook server and the MCP tools",
		Long: `Run handoff as a long-running service.

  - Scheduled scans every --scan-interval (0 disables them)
  - HTTP transport (default):
      POST /submissions  process a form submission (JSON body)
      POST /scans        run a scan now (optional calendarId/from/to)
      /mcp               MCP tools over streamable HTTP
      /healthz /readyz   health probes
    Webhook and MCP endpoints require "Authorization: Bearer <token>" when
    --webhook-token is set.
  - stdio transport: MCP tools over standard input/output
  - Prometheus metrics on --metrics-addr (HTTP transport only)

Scans and submissions run one at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadServeEnvVars(cmd, &cfg); err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Transport, "transport", TransportHTTP, "MCP transport: http or stdio (env: HANDOFF_TRANSPORT)")
	cmd.Flags().StringVar(&cfg.HTTPAddr, "addr", server.DefaultHTTPAddr, "HTTP listen address (env: HANDOFF_HTTP_ADDR)")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics listen address, empty disables (env: METRICS_ADDR)")
	cmd.Flags().StringVar(&cfg.WebhookToken, "webhook-token", "", "Bearer token for the webhook and MCP endpoints (env: HANDOFF_WEBHOOK_TOKEN)")
	cmd.Flags().DurationVar(&cfg.ScanInterval, "scan-interval", DefaultScanInterval, "Period of scheduled scans, 0 disables (env: HANDOFF_SCAN_INTERVAL)")
	cmd.Flags().DurationVar(&cfg.ScanWindow, "scan-window", server.DefaultScanWindow, "Look-ahead of scheduled scans (env: HANDOFF_SCAN_WINDOW)")
	cmd.Flags().BoolVar(&cfg.ReadOnly, "read-only", false, "Register only MCP tools that never write (env: HANDOFF_READ_ONLY)")

	return cmd
}

// loadServeEnvVars applies environment fallbacks for flags not set explicitly.
func loadServeEnvVars(cmd *cobra.Command, cfg *ServeConfig) error {
	envString(cmd, "transport", "HANDOFF_TRANSPORT", &cfg.Transport)
	envString(cmd, "addr", "HANDOFF_HTTP_ADDR", &cfg.HTTPAddr)
	envString(cmd, "webhook-token", "HANDOFF_WEBHOOK_TOKEN", &cfg.WebhookToken)
	if !cmd.Flags().Changed("metrics-addr") {
		if addr, ok := os.LookupEnv("METRICS_ADDR"); ok {
			cfg.MetricsAddr = addr
		}
	}
	if err := envDuration(cmd, "scan-interval", "HANDOFF_SCAN_INTERVAL", &cfg.ScanInterval); err != nil {
		return err
	}
	if err := envDuration(cmd, "scan-window", "HANDOFF_SCAN_WINDOW", &cfg.ScanWindow); err != nil {
		return err
	}
	if err := envBool(cmd, "read-only", "HANDOFF_READ_ONLY", &cfg.ReadOnly); err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", cfg.Transport)
	}
	if cfg.ScanInterval < 0 {
		return fmt.Errorf("--scan-interval must not be negative")
	}
	if cfg.ScanWindow <= 0 {
		return fmt.Errorf("--scan-window must be positive")
	}
	return nil
}

func runServe(cfg ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(&globals)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	a, err := newApp(shutdownCtx, &globals, logger, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if !a.service.AcceptsSubmissions() {
		logger.Warn("No document template configured: submissions will be rejected")
	}

	serverContext := server.NewServerContext(shutdownCtx, a.service, server.Options{
		Logger:      logger,
		Metrics:     metrics,
		AuditLogger: a.audit,
		ScanWindow:  cfg.ScanWindow,
	})
	defer func() { _ = serverContext.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("handoff", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := handoff_tools.RegisterHandoffTools(mcpSrv, serverContext, cfg.ReadOnly); err != nil {
		return fmt.Errorf("failed to register handoff tools: %w", err)
	}
	if cfg.ReadOnly {
		logger.Info("Starting in read-only mode: scan, submission and forget tools are not registered")
	}

	if cfg.ScanInterval > 0 {
		scheduler := server.NewScheduler(serverContext, cfg.ScanInterval, "")
		go scheduler.Run(serverContext.Context())
		logger.Info("Scheduled scans enabled", "interval", cfg.ScanInterval.String(), "calendar", a.service.CalendarID())
	}

	switch cfg.Transport {
	case TransportStdio:
		return runStdioServer(mcpSrv)
	default:
		return runHTTPServer(shutdownCtx, serverContext, mcpSrv, cfg, provider, logger)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, sc *server.ServerContext, mcpSrv *mcpserver.MCPServer, cfg ServeConfig, provider *instrumentation.Provider, logger *slog.Logger) error {
	if cfg.WebhookToken == "" {
		logger.Warn("No webhook token configured: /submissions, /scans and /mcp accept unauthenticated requests")
	} else {
		logger.Info("Bearer authentication enabled", "token", logging.SanitizeToken(cfg.WebhookToken))
	}

	var metricsServer *server.MetricsServer
	if cfg.MetricsAddr != "" && provider.PrometheusHandler() != nil {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	httpServer := server.NewHTTPServer(sc, server.HTTPConfig{
		Addr:      cfg.HTTPAddr,
		Token:     cfg.WebhookToken,
		MCPServer: mcpSrv,
	})

	serverDone := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}()
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverDone <- fmt.Errorf("metrics server stopped with error: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping servers")
	case runErr = <-serverDone:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	// Drain in-flight requests first, then stop the scheduler.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error during HTTP server shutdown", logging.Err(err))
	}
	_ = sc.Shutdown()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error during metrics server shutdown", logging.Err(err))
		}
	}

	return runErr
}
