// Package mock provides a test double for the mcp.Session interface.
//
// Use Session in unit tests to feed controlled catalogues and tool results
// without a live MCP server. All fields are safe to set before calling any
// method; mutating them during a concurrent call is the caller's
// responsibility.
package mock

import (
	"context"
	"sync"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
)

// CallToolCall records a single invocation of CallTool.
type CallToolCall struct {
	// Name is the tool name passed to CallTool.
	Name string
	// Args is the JSON argument string passed to CallTool.
	Args string
}

// Session is a mock implementation of mcp.Session.
// Zero values for response fields cause methods to return zero values and nil
// errors. Set Err fields to inject errors.
type Session struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Tools is returned by ListTools.
	Tools []mcp.ToolSchema

	// ListToolsErr, if non-nil, is returned as the error from ListTools.
	ListToolsErr error

	// Resources is returned by ListResources.
	Resources []mcp.ResourceDescriptor

	// ListResourcesErr, if non-nil, is returned as the error from ListResources.
	ListResourcesErr error

	// Prompts is returned by ListPrompts.
	Prompts []mcp.PromptDescriptor

	// ListPromptsErr, if non-nil, is returned as the error from ListPrompts.
	ListPromptsErr error

	// PromptTexts maps prompt name to the text returned by GetPrompt.
	PromptTexts map[string]string

	// GetPromptErr, if non-nil, is returned as the error from GetPrompt.
	GetPromptErr error

	// ResourceContents maps URI to the contents returned by ReadResource.
	ResourceContents map[string][]mcp.ResourceContent

	// ReadResourceErr, if non-nil, is returned as the error from ReadResource.
	ReadResourceErr error

	// ToolResults maps tool name to the result returned by CallTool. Tools
	// absent from the map return mcp.ErrToolNotFound.
	ToolResults map[string]*mcp.ToolResult

	// CallToolErr, if non-nil, is returned as the error from CallTool for
	// every tool.
	CallToolErr error

	// CloseErr, if non-nil, is returned from Close.
	CloseErr error

	// --- Call records (read after test) ---

	// CallToolCalls records every invocation of CallTool in order.
	CallToolCalls []CallToolCall

	// GetPromptCalls records the prompt names passed to GetPrompt in order.
	GetPromptCalls []string

	// ReadResourceCalls records the URIs passed to ReadResource in order.
	ReadResourceCalls []string

	// CloseCount is the number of times Close was called.
	CloseCount int
}

// ListTools returns Tools, ListToolsErr.
func (s *Session) ListTools(ctx context.Context) ([]mcp.ToolSchema, error) {
	return s.Tools, s.ListToolsErr
}

// ListResources returns Resources, ListResourcesErr.
func (s *Session) ListResources(ctx context.Context) ([]mcp.ResourceDescriptor, error) {
	return s.Resources, s.ListResourcesErr
}

// ListPrompts returns Prompts, ListPromptsErr.
func (s *Session) ListPrompts(ctx context.Context) ([]mcp.PromptDescriptor, error) {
	return s.Prompts, s.ListPromptsErr
}

// GetPrompt records the call and returns PromptTexts[name], GetPromptErr.
func (s *Session) GetPrompt(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetPromptCalls = append(s.GetPromptCalls, name)
	if s.GetPromptErr != nil {
		return "", s.GetPromptErr
	}
	return s.PromptTexts[name], nil
}

// ReadResource records the call and returns ResourceContents[uri], ReadResourceErr.
func (s *Session) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReadResourceCalls = append(s.ReadResourceCalls, uri)
	if s.ReadResourceErr != nil {
		return nil, s.ReadResourceErr
	}
	return s.ResourceContents[uri], nil
}

// CallTool records the call and returns ToolResults[name], CallToolErr.
func (s *Session) CallTool(ctx context.Context, name string, args string) (*mcp.ToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallToolCalls = append(s.CallToolCalls, CallToolCall{Name: name, Args: args})
	if s.CallToolErr != nil {
		return nil, s.CallToolErr
	}
	result, ok := s.ToolResults[name]
	if !ok {
		return nil, mcp.ErrToolNotFound
	}
	return result, nil
}

// Close increments CloseCount and returns CloseErr.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCount++
	return s.CloseErr
}

// Reset clears all recorded calls. Thread-safe.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallToolCalls = nil
	s.GetPromptCalls = nil
	s.ReadResourceCalls = nil
	s.CloseCount = 0
}

// Ensure Session implements mcp.Session at compile time.
var _ mcp.Session = (*Session)(nil)
