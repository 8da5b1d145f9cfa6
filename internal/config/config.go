// Package config provides the configuration schema, loader, and provider
// registry for the user-management agent and its MCP server.
package config

import (
	"time"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, shared by the agent and the
// MCP server binaries. It is typically loaded from a YAML file using [Load]
// or [LoadFromReader], then overlaid with environment variables via
// [ApplyEnv].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Model  ModelConfig  `yaml:"model"`

	// FallbackModel optionally names a second backend tried when the
	// primary model fails. Disabled when Provider is empty.
	FallbackModel ModelConfig `yaml:"fallback_model"`

	// Failover tunes the per-backend circuit breakers guarding model
	// calls. Zero values mean built-in defaults.
	Failover FailoverConfig `yaml:"failover"`

	Agent        AgentConfig        `yaml:"agent"`
	MCP          MCPConfig          `yaml:"mcp"`
	UsersService UsersServiceConfig `yaml:"users_service"`
}

// ServerConfig holds logging and network settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ListenAddr is the TCP address the MCP server binary listens on
	// (e.g., ":8005"). Ignored by the agent binary.
	ListenAddr string `yaml:"listen_addr"`

	// MetricsAddr is the TCP address serving the Prometheus /metrics
	// endpoint. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ModelConfig selects and configures the LLM backend.
type ModelConfig struct {
	// Provider selects the registered LLM provider implementation
	// (e.g., "openai", "anthropic", "ollama").
	Provider string `yaml:"provider"`

	// Name selects a specific model within the provider (e.g., "gpt-4o").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	// Overridden by DIAL_API_KEY.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the provider's default API base URL.
	// Overridden by DIAL_API_ENDPOINT.
	Endpoint string `yaml:"endpoint"`

	// Temperature is the sampling temperature. Zero means provider default.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int `yaml:"max_tokens"`
}

// AgentConfig tunes the completion cycle.
type AgentConfig struct {
	// MaxTurns bounds the number of model turns per completion cycle.
	// Zero means the built-in default.
	MaxTurns int `yaml:"max_turns"`

	// ToolTimeout bounds a single tool invocation. Zero means the built-in
	// default.
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// ParallelTools executes the tool calls of one turn concurrently.
	ParallelTools bool `yaml:"parallel_tools"`
}

// FailoverConfig tunes the circuit breaker attached to each model backend.
type FailoverConfig struct {
	// MaxFailures is the number of consecutive failures before a backend's
	// breaker opens. Zero means the built-in default.
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeout is how long an open breaker waits before probing the
	// backend again. Zero means the built-in default.
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// HalfOpenMax is the number of probe calls allowed while half-open.
	// Zero means the built-in default.
	HalfOpenMax int `yaml:"half_open_max"`
}

// MCPConfig describes how the agent connects to its MCP server.
type MCPConfig struct {
	// Transport specifies the connection mechanism.
	Transport mcp.Transport `yaml:"transport"`

	// URL is the MCP endpoint address used when Transport is
	// "streamable-http" (e.g., "http://localhost:8005/mcp").
	URL string `yaml:"url"`

	// Command is the executable (with optional arguments) launched when
	// Transport is "stdio". Ignored for streamable-http transport.
	Command string `yaml:"command"`

	// Env holds additional environment variables injected into the
	// subprocess when Transport is "stdio". May be nil.
	Env map[string]string `yaml:"env"`
}

// UsersServiceConfig points the MCP server at the backing users REST API.
type UsersServiceConfig struct {
	// BaseURL is the users-management service root
	// (e.g., "http://localhost:8041"). Overridden by
	// USERS_MANAGEMENT_SERVICE_URL.
	BaseURL string `yaml:"base_url"`
}
