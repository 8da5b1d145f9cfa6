package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
)

const validYAML = `
server:
  log_level: debug
  listen_addr: ":8005"
  metrics_addr: ":9090"
model:
  provider: openai
  name: gpt-4o
  api_key: file-key
  temperature: 0.7
  max_tokens: 1024
failover:
  max_failures: 2
  reset_timeout: 10s
  half_open_max: 1
agent:
  max_turns: 5
  tool_timeout: 45s
  parallel_tools: true
mcp:
  transport: streamable-http
  url: http://localhost:8005/mcp
users_service:
  base_url: http://localhost:8041
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Server.LogLevel != LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Model.Provider != "openai" || cfg.Model.Name != "gpt-4o" {
		t.Errorf("Model = %+v, want openai/gpt-4o", cfg.Model)
	}
	if cfg.Failover.MaxFailures != 2 || cfg.Failover.ResetTimeout != 10*time.Second || cfg.Failover.HalfOpenMax != 1 {
		t.Errorf("Failover = %+v, want 2/10s/1", cfg.Failover)
	}
	if cfg.Agent.MaxTurns != 5 {
		t.Errorf("MaxTurns = %d, want 5", cfg.Agent.MaxTurns)
	}
	if cfg.Agent.ToolTimeout != 45*time.Second {
		t.Errorf("ToolTimeout = %s, want 45s", cfg.Agent.ToolTimeout)
	}
	if !cfg.Agent.ParallelTools {
		t.Error("ParallelTools = false, want true")
	}
	if cfg.MCP.Transport != mcp.TransportStreamableHTTP {
		t.Errorf("Transport = %q, want streamable-http", cfg.MCP.Transport)
	}
	if cfg.UsersService.BaseURL != "http://localhost:8041" {
		t.Errorf("BaseURL = %q, want http://localhost:8041", cfg.UsersService.BaseURL)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	yaml := `
model:
  provider: openai
  modle_name: typo
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("unknown field should be rejected")
	}
}

func TestLoadFromReaderEmptyConfig(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty config should load with defaults: %v", err)
	}
	if cfg.Agent.MaxTurns != 0 {
		t.Errorf("MaxTurns = %d, want 0 (defaulted later)", cfg.Agent.MaxTurns)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"bad log level", Config{Server: ServerConfig{LogLevel: "verbose"}}},
		{"negative max turns", Config{Agent: AgentConfig{MaxTurns: -1}}},
		{"negative tool timeout", Config{Agent: AgentConfig{ToolTimeout: -time.Second}}},
		{"temperature out of range", Config{Model: ModelConfig{Temperature: 3}}},
		{"fallback provider without name", Config{FallbackModel: ModelConfig{Provider: "ollama"}}},
		{"negative failover max failures", Config{Failover: FailoverConfig{MaxFailures: -1}}},
		{"negative failover reset timeout", Config{Failover: FailoverConfig{ResetTimeout: -time.Second}}},
		{"negative failover half open max", Config{Failover: FailoverConfig{HalfOpenMax: -1}}},
		{"bad transport", Config{MCP: MCPConfig{Transport: "carrier-pigeon"}}},
		{"stdio without command", Config{MCP: MCPConfig{Transport: mcp.TransportStdio}}},
		{"http without url", Config{MCP: MCPConfig{Transport: mcp.TransportStreamableHTTP}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(&tc.cfg); err == nil {
				t.Errorf("Validate(%+v) = nil, want error", tc.cfg)
			}
		})
	}
}

// captureLogs routes the default logger into a buffer for the duration of
// the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestValidateUnknownProviderPassesSilently(t *testing.T) {
	buf := captureLogs(t)

	cfg := Config{Model: ModelConfig{Provider: "my-custom-gateway"}}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("Validate() = %v, want nil for unknown provider", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Validate() logged %q, want no output", buf.String())
	}
}

func TestLoadWarnsOnUnknownProvider(t *testing.T) {
	buf := captureLogs(t)

	yaml := `
model:
  provider: my-custom-gateway
  name: some-model
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "my-custom-gateway") || !strings.Contains(out, "unknown model provider") {
		t.Errorf("log output = %q, want unknown-provider warning", out)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPIEndpoint, "https://dial.example.com")
	t.Setenv(EnvUsersServiceURL, "http://users.example.com")

	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Model.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override", cfg.Model.APIKey)
	}
	if cfg.Model.Endpoint != "https://dial.example.com" {
		t.Errorf("Endpoint = %q, want env override", cfg.Model.Endpoint)
	}
	if cfg.UsersService.BaseURL != "http://users.example.com" {
		t.Errorf("BaseURL = %q, want env override", cfg.UsersService.BaseURL)
	}
}

func TestApplyEnvLeavesFileValues(t *testing.T) {
	cfg := &Config{Model: ModelConfig{APIKey: "file-key"}}
	ApplyEnv(cfg)
	if cfg.Model.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file value kept", cfg.Model.APIKey)
	}
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	if LogDebug.SlogLevel().String() != "DEBUG" {
		t.Errorf("debug maps to %s", LogDebug.SlogLevel())
	}
	if LogLevel("").SlogLevel().String() != "INFO" {
		t.Errorf("empty maps to %s", LogLevel("").SlogLevel())
	}
}
