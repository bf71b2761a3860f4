package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/catalog"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/definitions"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/evaluator"
	mofotel "github.com/liuyuxiang92/MOFMaster-Scientific-Server/otel"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/registry"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/server"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/tools"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MOF tools MCP server",
		RunE:  runServe,
	}

	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	cmd.Flags().IntP("port", "p", 50001, "MCP listen port")
	cmd.Flags().Int("health-port", 8080, "Health HTTP listen port (0 disables)")
	cmd.Flags().String("definitions", "", "Path to tool definitions YAML (default: built-in set)")
	cmd.Flags().String("catalog-db", "", "Path to SQLite catalog database (default: in-memory catalog)")
	cmd.Flags().String("evaluator-endpoint", "", "Remote force-field service URL (default: built-in Lennard-Jones)")
	cmd.Flags().String("health-cron", "*/1 * * * *", "Cron expression for evaluator health probes (UTC)")
	cmd.Flags().String("otlp-endpoint", "", "OTLP trace collector endpoint host:port")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	healthPort, _ := cmd.Flags().GetInt("health-port")
	definitionsPath, _ := cmd.Flags().GetString("definitions")
	catalogDB, _ := cmd.Flags().GetString("catalog-db")
	evaluatorEndpoint, _ := cmd.Flags().GetString("evaluator-endpoint")
	healthCron, _ := cmd.Flags().GetString("health-cron")
	otlpEndpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	logger := slog.Default()

	store, closeStore, err := buildCatalogStore(catalogDB)
	if err != nil {
		return exitError(exitRuntime, "opening catalog store: %v", err)
	}
	defer closeStore()

	eval, checker, err := buildEvaluator(evaluatorEndpoint)
	if err != nil {
		return exitError(exitValidation, "configuring evaluator: %v", err)
	}

	toolset, err := tools.NewToolset(store, eval)
	if err != nil {
		return fmt.Errorf("creating toolset: %w", err)
	}

	reg := registry.New()
	if err := registerDefinitions(reg, toolset, definitionsPath); err != nil {
		return err
	}

	if otlpEndpoint != "" {
		shutdownTracing, err := mofotel.SetupTracing(cmd.Context(), otlpEndpoint)
		if err != nil {
			return exitError(exitRuntime, "initializing tracing: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	toolObserver, err := mofotel.NewToolObserver(
		otelapi.GetMeterProvider().Meter("mofmaster/tools"),
		otelapi.GetTracerProvider().Tracer("mofmaster/tools"),
	)
	if err != nil {
		return fmt.Errorf("initializing tool observability: %w", err)
	}
	tools.SetObserver(toolObserver)
	defer tools.SetObserver(nil)

	healthScheduler, err := server.NewHealthScheduler(server.HealthSchedulerConfig{
		Checker:  checker,
		CronExpr: healthCron,
		Logger:   logger,
	})
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	if err := healthScheduler.Start(cmd.Context()); err != nil {
		return fmt.Errorf("starting health scheduler: %w", err)
	}
	defer func() {
		_ = healthScheduler.Stop(context.Background())
	}()

	mcpAddr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	mcpServer, err := server.NewMCPServer(server.MCPServerConfig{
		Addr:     mcpAddr,
		Registry: reg,
		Schemas:  toolset.InputSchemas(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	var healthServer *http.Server
	if healthPort > 0 {
		healthServer = &http.Server{
			Addr:         net.JoinHostPort(host, fmt.Sprintf("%d", healthPort)),
			Handler:      server.NewHealthHandler(healthScheduler),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
	}

	// Signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "MOF tools server listening on %s\n", mcpAddr)
		errCh <- mcpServer.ListenAndServe()
	}()
	if healthServer != nil {
		go func() {
			errCh <- healthServer.ListenAndServe()
		}()
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mcpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		if healthServer != nil {
			if err := healthServer.Shutdown(shutdownCtx); err != nil {
				return exitError(exitRuntime, "health shutdown error: %v", err)
			}
		}
		return nil
	case err := <-errCh:
		_ = mcpServer.Shutdown(context.Background())
		if healthServer != nil {
			_ = healthServer.Close()
		}
		if err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func buildCatalogStore(path string) (catalog.Store, func(), error) {
	if path == "" {
		return catalog.NewMemoryStore(), func() {}, nil
	}
	sqliteStore, err := catalog.NewSQLiteStore(catalog.SQLiteStoreConfig{DSN: path})
	if err != nil {
		return nil, nil, err
	}
	return sqliteStore, func() { _ = sqliteStore.Close() }, nil
}

func buildEvaluator(endpoint string) (evaluator.Evaluator, evaluator.HealthChecker, error) {
	if endpoint == "" {
		lj := evaluator.NewLennardJones()
		return lj, lj, nil
	}
	remote, err := evaluator.NewRemote(evaluator.RemoteConfig{Endpoint: endpoint})
	if err != nil {
		return nil, nil, err
	}
	return remote, remote, nil
}

func registerDefinitions(reg *registry.Registry, toolset *tools.Toolset, path string) error {
	defs := definitions.Defaults()
	if path != "" {
		loaded, err := definitions.Load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return exitError(exitFileNotFound, "tool definitions file not found: %s", path)
			}
			return exitError(exitValidation, "%v", err)
		}
		defs = loaded
	}
	if err := definitions.Register(reg, toolset.Operations(), defs); err != nil {
		return exitError(exitValidation, "registering tools: %v", err)
	}
	return nil
}
