// Package mcpclient implements [mcp.Session] on top of the official MCP Go
// SDK (github.com/modelcontextprotocol/go-sdk).
//
// A Client owns exactly one protocol session to one server. Open dials the
// configured transport and performs the initialize handshake; the typed
// operations then map one-to-one onto protocol requests, correlated by the
// SDK's JSON-RPC layer.
//
// Typical usage:
//
//	c := mcpclient.New(mcpclient.Config{
//	    Transport: mcp.TransportStreamableHTTP,
//	    URL:       "http://localhost:8000/mcp",
//	})
//	if err := c.Open(ctx); err != nil { ... }
//	defer c.Close()
//
//	catalog, err := mcpclient.DiscoverCatalog(ctx, c)
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
)

// Config describes how to reach an MCP server.
type Config struct {
	// Transport selects the connection mechanism.
	Transport mcp.Transport

	// URL is the endpoint address for TransportStreamableHTTP.
	URL string

	// Command is the subprocess command line for TransportStdio. It is split
	// on spaces into executable + args.
	Command string

	// Env holds additional environment variables for stdio subprocesses.
	Env map[string]string
}

// Client is a concrete [mcp.Session] backed by the official SDK.
//
// The zero value is NOT usable; create instances with [New] and call [Client.Open]
// before any other method.
type Client struct {
	cfg    Config
	client *mcpsdk.Client

	mu      sync.Mutex
	session *mcpsdk.ClientSession
}

// Compile-time check: Client must implement mcp.Session.
var _ mcp.Session = (*Client)(nil)

// New creates a Client for the given server config. No connection is made
// until Open.
func New(cfg Config) *Client {
	client := mcpsdk.NewClient(
		&mcpsdk.Implementation{Name: "ai-dial-mcp-agent", Version: "1.0.0"},
		nil,
	)
	return &Client{cfg: cfg, client: client}
}

// Open dials the configured transport and performs the MCP initialize
// handshake. Calling Open on an already-open client returns an error.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return fmt.Errorf("mcpclient: session already open")
	}
	if !c.cfg.Transport.IsValid() {
		return fmt.Errorf("mcpclient: unknown transport %q", c.cfg.Transport)
	}

	var transport mcpsdk.Transport

	switch c.cfg.Transport {
	case mcp.TransportStdio:
		executable, args := splitCommand(c.cfg.Command)
		if executable == "" {
			return fmt.Errorf("mcpclient: stdio transport requires a non-empty Command")
		}
		cmd := exec.CommandContext(ctx, executable, args...)
		cmd.Env = buildEnv(c.cfg.Env)
		transport = &mcpsdk.CommandTransport{Command: cmd}

	case mcp.TransportStreamableHTTP:
		if c.cfg.URL == "" {
			return fmt.Errorf("mcpclient: streamable-http transport requires a non-empty URL")
		}
		transport = &mcpsdk.StreamableClientTransport{Endpoint: c.cfg.URL}
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("mcpclient: connect: %w", err)
	}

	c.session = session
	return nil
}

// OpenWith attaches an already-established SDK transport, performing the
// initialize handshake over it. Used by tests with in-memory transports.
func (c *Client) OpenWith(ctx context.Context, transport mcpsdk.Transport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return fmt.Errorf("mcpclient: session already open")
	}
	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("mcpclient: connect: %w", err)
	}
	c.session = session
	return nil
}

// currentSession returns the live session or ErrNotConnected.
func (c *Client) currentSession() (*mcpsdk.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, mcp.ErrNotConnected
	}
	return c.session, nil
}

// ListTools implements [mcp.Session].
func (c *Client) ListTools(ctx context.Context) ([]mcp.ToolSchema, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}

	var tools []mcp.ToolSchema
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcpclient: list tools: %w", err)
		}
		tools = append(tools, mcp.ToolSchema{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schemaToMap(tool.InputSchema),
		})
	}
	return tools, nil
}

// ListResources implements [mcp.Session].
func (c *Client) ListResources(ctx context.Context) ([]mcp.ResourceDescriptor, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}

	var resources []mcp.ResourceDescriptor
	for res, err := range session.Resources(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcpclient: list resources: %w", err)
		}
		resources = append(resources, mcp.ResourceDescriptor{
			URI:         res.URI,
			Name:        res.Name,
			MIMEType:    res.MIMEType,
			Description: res.Description,
		})
	}
	return resources, nil
}

// ListPrompts implements [mcp.Session].
func (c *Client) ListPrompts(ctx context.Context) ([]mcp.PromptDescriptor, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}

	var prompts []mcp.PromptDescriptor
	for prompt, err := range session.Prompts(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcpclient: list prompts: %w", err)
		}
		prompts = append(prompts, mcp.PromptDescriptor{
			Name:        prompt.Name,
			Description: prompt.Description,
		})
	}
	return prompts, nil
}

// GetPrompt implements [mcp.Session]. Text segments of the resolved prompt
// are joined with newlines; non-text segments are skipped.
func (c *Client) GetPrompt(ctx context.Context, name string) (string, error) {
	session, err := c.currentSession()
	if err != nil {
		return "", err
	}

	result, err := session.GetPrompt(ctx, &mcpsdk.GetPromptParams{Name: name})
	if err != nil {
		return "", fmt.Errorf("mcpclient: get prompt %q: %w", name, err)
	}

	var segments []string
	for _, msg := range result.Messages {
		if tc, ok := msg.Content.(*mcpsdk.TextContent); ok {
			segments = append(segments, tc.Text)
		}
	}
	return strings.Join(segments, "\n"), nil
}

// ReadResource implements [mcp.Session].
func (c *Client) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContent, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}

	result, err := session.ReadResource(ctx, &mcpsdk.ReadResourceParams{URI: uri})
	if err != nil {
		return nil, fmt.Errorf("mcpclient: read resource %q: %w", uri, err)
	}

	var contents []mcp.ResourceContent
	for _, rc := range result.Contents {
		item := mcp.ResourceContent{
			URI:      rc.URI,
			MIMEType: rc.MIMEType,
		}
		if len(rc.Blob) > 0 {
			item.Kind = mcp.ContentBlob
			item.Blob = rc.Blob
		} else {
			item.Kind = mcp.ContentText
			item.Text = rc.Text
		}
		contents = append(contents, item)
	}
	return contents, nil
}

// CallTool implements [mcp.Session].
//
// args must be a valid JSON object string. An empty object ("{}") is valid
// for parameter-less tools.
func (c *Client) CallTool(ctx context.Context, name string, args string) (*mcp.ToolResult, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}

	var argsMap map[string]any
	if args != "" && args != "{}" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return nil, fmt.Errorf("mcpclient: invalid args JSON for tool %q: %w", name, err)
		}
	}

	callResult, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: argsMap,
	})
	if err != nil {
		return nil, fmt.Errorf("mcpclient: call tool %q: %w", name, err)
	}

	result := &mcp.ToolResult{IsError: callResult.IsError}

	// Concatenate text segments; a trailing image or blob wins the Kind.
	var sb strings.Builder
	for _, content := range callResult.Content {
		switch v := content.(type) {
		case *mcpsdk.TextContent:
			sb.WriteString(v.Text)
		case *mcpsdk.ImageContent:
			result.Kind = mcp.ContentBlob
			result.Blob = v.Data
		}
	}
	if result.Kind == mcp.ContentText {
		result.Text = sb.String()
	}
	return result, nil
}

// Close terminates the session. Closing an unopened or already-closed client
// is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	if err != nil {
		return fmt.Errorf("mcpclient: close: %w", err)
	}
	return nil
}

// schemaToMap converts any schema value to a map[string]any.
func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	if m, ok := schema.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

// splitCommand splits a command string into executable and arguments.
// e.g. "/bin/foo --bar baz" → ("/bin/foo", ["--bar", "baz"]).
func splitCommand(command string) (executable string, args []string) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

// buildEnv returns the parent environment extended with extra entries. The
// subprocess keeps PATH and friends; configured variables win on conflict.
func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}
