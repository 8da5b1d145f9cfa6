// Package llm defines the Provider interface for Large Language Model backends.
//
// An LLM provider wraps a remote model API (e.g., an OpenAI-compatible
// deployment or a local Ollama instance) and exposes a uniform streaming
// interface so the agent orchestrator can request completions without coupling
// to any specific SDK.
//
// Providers emit raw stream fragments: tool-call pieces arrive exactly as the
// backend streamed them, partial and keyed only by index. Reconstructing
// complete tool calls out of fragments is the orchestrator's job (see the
// agent package), which keeps providers thin and the aggregation logic
// testable in isolation.
//
// Implementors must be safe for concurrent use. Channels returned by
// StreamCompletion must be closed by the implementation when the stream ends
// or when the supplied context is cancelled.
package llm

import (
	"context"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

// FinishError is the FinishReason value carried by a chunk that reports a
// mid-stream failure. The chunk's Text holds the error description.
const FinishError = "error"

// ToolDefinition describes a tool that can be offered to a model.
type ToolDefinition struct {
	// Name is the tool's unique identifier.
	Name string

	// Description explains what the tool does (included in model prompts).
	Description string

	// Parameters is the JSON Schema describing the tool's input parameters.
	// It is passed to the model verbatim.
	Parameters map[string]any
}

// CompletionRequest carries everything the model needs to produce a response.
// Callers should treat a zero-value request as invalid; at minimum Messages
// must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation history. The last message is
	// typically from the user role and drives the response.
	Messages []types.Message

	// Tools is the set of function/tool definitions offered to the model.
	// The model may choose to call zero or more of them in its response.
	Tools []ToolDefinition

	// Temperature controls output randomness in the range [0.0, 2.0]. A
	// value of 0.0 requests greedy decoding.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int
}

// ToolCallDelta is one raw fragment of a streamed tool call. Any subset of
// the optional fields may be present; fragments for the same Index must be
// applied in arrival order.
type ToolCallDelta struct {
	// Index is the position of this call in the model's response. It is the
	// aggregation key: all fragments of one call share an Index.
	Index int

	// ID is the correlation token, present on whichever fragment the backend
	// chose to carry it.
	ID string

	// Name is the tool name, present on whichever fragment carries it.
	Name string

	// Arguments is a fragment of the JSON-encoded arguments string. Fragments
	// are concatenated in arrival order by the aggregator.
	Arguments string

	// Type is the call kind declared by the backend ("function" when present).
	Type string
}

// Chunk is a single fragment emitted by a streaming completion. A chunk may
// carry text, tool-call fragments, a finish signal, or any combination.
// Chunks are ephemeral: they are consumed exactly once and never stored.
type Chunk struct {
	// Text is the incremental text content of this chunk.
	Text string

	// ToolCallDeltas holds the raw tool-call fragments of this chunk.
	ToolCallDeltas []ToolCallDelta

	// FinishReason is set on the final chunk and indicates why generation
	// stopped: "stop", "length", "tool_calls", [FinishError], or "" for a
	// non-final chunk.
	FinishReason string
}

// Provider is the abstraction over any LLM backend.
//
// Implementations must propagate context cancellation promptly: when ctx is
// cancelled the stream channel must be closed as quickly as possible.
type Provider interface {
	// StreamCompletion sends req to the model and returns a read-only channel
	// that emits Chunk values as they arrive. The channel is closed by the
	// implementation when generation finishes or when ctx is cancelled.
	//
	// Callers must drain the channel to avoid goroutine leaks. Errors that
	// occur after the channel is opened are surfaced as a Chunk with
	// FinishReason == FinishError; the initial error return is non-nil only
	// for failures that prevent the stream from starting (e.g., invalid
	// credentials, malformed request).
	//
	// The returned channel must never be nil when error is nil.
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Chunk, error)
}
