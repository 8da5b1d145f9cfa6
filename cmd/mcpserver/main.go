// Command mcpserver serves the users-management MCP server over streamable
// HTTP. It exposes user CRUD tools backed by the users-management REST
// service, plus guidance prompts and the workflow diagram resource.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/config"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/health"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/observe"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/users"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/usersmcp"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/mcpserver.yaml", "path to the YAML configuration file")
	diagramPath := flag.String("flow-diagram", "assets/flow_diagram.png", "path to the workflow diagram PNG")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "mcpserver: config file %q not found, copy configs/mcpserver.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "mcpserver: %v\n", err)
		}
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.UsersService.BaseURL == "" {
		fmt.Fprintf(os.Stderr, "mcpserver: users service URL is required, set users_service.base_url or the %s environment variable\n", config.EnvUsersServiceURL)
		return 1
	}
	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8005"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "users-management-mcp-server",
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	store, err := users.NewClient(cfg.UsersService.BaseURL)
	if err != nil {
		slog.Error("failed to create users service client", "err", err)
		return 1
	}

	if *diagramPath != "" {
		if _, err := os.Stat(*diagramPath); err != nil {
			slog.Warn("flow diagram not found, resource disabled", "path", *diagramPath, "err", err)
			*diagramPath = ""
		}
	}

	server, err := usersmcp.New(usersmcp.Config{
		Store:           store,
		FlowDiagramPath: *diagramPath,
		Logger:          logger,
	})
	if err != nil {
		slog.Error("failed to create MCP server", "err", err)
		return 1
	}

	mcpHandler := mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return server
	}, nil)

	healthHandler := health.New(
		health.CheckHTTP("users_service", cfg.UsersService.BaseURL, nil),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", observe.Middleware(observe.DefaultMetrics())(mcpHandler))
	mux.Handle("GET /metrics", promhttp.Handler())
	healthHandler.Register(mux)

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening", "addr", listenAddr, "users_service", cfg.UsersService.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}
