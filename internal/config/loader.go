package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
)

// Environment variables overlaid onto the file config by [ApplyEnv].
const (
	// EnvAPIKey overrides model.api_key.
	EnvAPIKey = "DIAL_API_KEY"

	// EnvAPIEndpoint overrides model.endpoint.
	EnvAPIEndpoint = "DIAL_API_ENDPOINT"

	// EnvUsersServiceURL overrides users_service.base_url.
	EnvUsersServiceURL = "USERS_MANAGEMENT_SERVICE_URL"
)

// ValidLLMProviders lists known LLM provider names. [LoadFromReader] warns
// about provider names outside this list but does not reject them.
var ValidLLMProviders = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path, overlays environment
// variables, and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, overlays environment
// variables, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	warnUnknownProviders(cfg)
	return cfg, nil
}

// warnUnknownProviders logs a note for provider names outside
// [ValidLLMProviders]. A typo and a legitimate third-party provider look the
// same here, so this never fails the load.
func warnUnknownProviders(cfg *Config) {
	for _, p := range []string{cfg.Model.Provider, cfg.FallbackModel.Provider} {
		if p != "" && !slices.Contains(ValidLLMProviders, p) {
			slog.Warn("unknown model provider; may be a typo or third-party provider",
				"provider", p,
				"known", ValidLLMProviders,
			)
		}
	}
}

// ApplyEnv overlays recognised environment variables onto cfg. Set variables
// win over file values.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv(EnvAPIEndpoint); v != "" {
		cfg.Model.Endpoint = v
	}
	if v := os.Getenv(EnvUsersServiceURL); v != "" {
		cfg.UsersService.BaseURL = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.FallbackModel.Provider != "" && cfg.FallbackModel.Name == "" {
		errs = append(errs, fmt.Errorf("fallback_model.name is required when fallback_model.provider is set"))
	}

	if cfg.Agent.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("agent.max_turns %d must not be negative", cfg.Agent.MaxTurns))
	}
	if cfg.Agent.ToolTimeout < 0 {
		errs = append(errs, fmt.Errorf("agent.tool_timeout %s must not be negative", cfg.Agent.ToolTimeout))
	}
	if cfg.Failover.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("failover.max_failures %d must not be negative", cfg.Failover.MaxFailures))
	}
	if cfg.Failover.ResetTimeout < 0 {
		errs = append(errs, fmt.Errorf("failover.reset_timeout %s must not be negative", cfg.Failover.ResetTimeout))
	}
	if cfg.Failover.HalfOpenMax < 0 {
		errs = append(errs, fmt.Errorf("failover.half_open_max %d must not be negative", cfg.Failover.HalfOpenMax))
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature %.2f is out of range [0, 2]", cfg.Model.Temperature))
	}

	if cfg.MCP.Transport != "" && !cfg.MCP.Transport.IsValid() {
		errs = append(errs, fmt.Errorf("mcp.transport %q is invalid; valid values: stdio, streamable-http", cfg.MCP.Transport))
	}
	if cfg.MCP.Transport == mcp.TransportStdio && cfg.MCP.Command == "" {
		errs = append(errs, fmt.Errorf("mcp.command is required when transport is stdio"))
	}
	if cfg.MCP.Transport == mcp.TransportStreamableHTTP && cfg.MCP.URL == "" {
		errs = append(errs, fmt.Errorf("mcp.url is required when transport is streamable-http"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps a LogLevel to its slog equivalent. Unknown or empty values
// map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
