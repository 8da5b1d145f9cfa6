// Command agent is the interactive user-management agent console. It connects
// to the users-management MCP server, discovers its tools and drives an LLM
// completion loop that executes tool calls on the user's behalf.
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

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/agent"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/config"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/console"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp/mcpclient"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/observe"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/resilience"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm/anyllm"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/agent.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "agent: config file %q not found, copy configs/agent.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "agent: %v\n", err)
		}
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.Model.APIKey == "" {
		fmt.Fprintf(os.Stderr, "agent: model API key is required, set model.api_key or the %s environment variable\n", config.EnvAPIKey)
		return 1
	}

	slog.Info("agent starting",
		"config", *configPath,
		"provider", cfg.Model.Provider,
		"model", cfg.Model.Name,
		"mcp_transport", cfg.MCP.Transport,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "ai-dial-mcp-agent",
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr)
	}

	reg := config.NewRegistry()
	registerLLMProviders(reg)

	provider, err := reg.CreateLLM(cfg.Model)
	if err != nil {
		slog.Error("failed to create LLM provider", "provider", cfg.Model.Provider, "err", err)
		return 1
	}

	if cfg.FallbackModel.Provider != "" {
		secondary, err := reg.CreateLLM(cfg.FallbackModel)
		if err != nil {
			slog.Error("failed to create fallback LLM provider", "provider", cfg.FallbackModel.Provider, "err", err)
			return 1
		}
		metrics := observe.DefaultMetrics()
		group := resilience.NewLLMFallback(provider, cfg.Model.Provider, resilience.FallbackConfig{
			CircuitBreaker: resilience.CircuitBreakerConfig{
				MaxFailures:  cfg.Failover.MaxFailures,
				ResetTimeout: cfg.Failover.ResetTimeout,
				HalfOpenMax:  cfg.Failover.HalfOpenMax,
				OnTransition: func(name string, from, to resilience.State) {
					metrics.RecordBreakerTransition(ctx, name, from.String(), to.String())
				},
			},
		})
		group.AddFallback(cfg.FallbackModel.Provider, secondary)
		provider = group
		slog.Info("model failover enabled",
			"primary", cfg.Model.Provider,
			"fallback", cfg.FallbackModel.Provider,
		)
	}

	client := mcpclient.New(mcpclient.Config{
		Transport: cfg.MCP.Transport,
		URL:       cfg.MCP.URL,
		Command:   cfg.MCP.Command,
		Env:       cfg.MCP.Env,
	})
	if err := client.Open(ctx); err != nil {
		slog.Error("failed to connect to MCP server", "err", err)
		return 1
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Warn("MCP session close error", "err", err)
		}
	}()

	catalog, err := mcpclient.DiscoverCatalog(ctx, client)
	if err != nil {
		slog.Error("failed to discover MCP catalog", "err", err)
		return 1
	}
	for _, tool := range catalog.Tools {
		slog.Info("discovered tool", "name", tool.Name)
	}
	for _, res := range catalog.Resources {
		slog.Info("discovered resource", "uri", res.URI)
	}

	dispatcherOpts := []agent.DispatcherOption{
		agent.WithParallelDispatch(cfg.Agent.ParallelTools),
	}
	if cfg.Agent.ToolTimeout > 0 {
		dispatcherOpts = append(dispatcherOpts, agent.WithToolTimeout(cfg.Agent.ToolTimeout))
	}
	dispatcher := agent.NewDispatcher(client, dispatcherOpts...)

	agentOpts := []agent.Option{
		agent.WithTextSink(os.Stdout),
	}
	if cfg.Agent.MaxTurns > 0 {
		agentOpts = append(agentOpts, agent.WithMaxTurns(cfg.Agent.MaxTurns))
	}
	if cfg.Model.Temperature != 0 {
		agentOpts = append(agentOpts, agent.WithTemperature(cfg.Model.Temperature))
	}
	if cfg.Model.MaxTokens > 0 {
		agentOpts = append(agentOpts, agent.WithMaxTokens(cfg.Model.MaxTokens))
	}
	ag := agent.New(provider, dispatcher, mcpclient.ToolDefinitions(catalog), agentOpts...)

	seed := console.SeedHistory(agent.SystemPrompt, catalog.Prompts)

	if err := console.New(ag).Run(ctx, seed); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("console loop error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// registerLLMProviders wires all built-in LLM provider factories into reg.
// The openai provider uses the native client; the rest go through the
// any-llm bridge with optional APIKey and BaseURL.
func registerLLMProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(cfg config.ModelConfig) (llm.Provider, error) {
		var opts []openai.Option
		if cfg.Endpoint != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
		}
		return openai.New(cfg.APIKey, cfg.Name, opts...)
	})

	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(cfg config.ModelConfig) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if cfg.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
			}
			if cfg.Endpoint != "" {
				opts = append(opts, anyllmlib.WithBaseURL(cfg.Endpoint))
			}
			return anyllm.New(providerName, cfg.Name, opts...)
		})
	}

	// ollama is a local server; it uses the endpoint for the address, not an
	// API key.
	reg.RegisterLLM("ollama", func(cfg config.ModelConfig) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if cfg.Endpoint != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.Endpoint))
		}
		return anyllm.New("ollama", cfg.Name, opts...)
	})
}

// serveMetrics exposes the Prometheus scrape endpoint. Failures are logged
// and do not take the agent down.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("metrics endpoint error", "err", err)
	}
}
