// Package mcp defines the contract between the agent and Model Context
// Protocol servers: the [Session] interface for a live protocol session, the
// catalog types describing what a server offers, and the content variants a
// server can return.
package mcp

import (
	"context"
	"errors"
)

// Sentinel errors returned by Session implementations.
var (
	// ErrNotConnected is returned by any Session operation invoked before
	// Open succeeded or after Close.
	ErrNotConnected = errors.New("mcp: session not connected")

	// ErrToolNotFound is returned by CallTool when the named tool is not
	// offered by the server.
	ErrToolNotFound = errors.New("mcp: tool not found")
)

// Transport selects the connection mechanism for an MCP server.
type Transport string

const (
	// TransportStdio spawns a subprocess and communicates over stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP communicates via the MCP Streamable HTTP protocol.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}

// ContentKind discriminates the variants of content an MCP server can return.
type ContentKind int

const (
	// ContentText is UTF-8 text content.
	ContentText ContentKind = iota

	// ContentBlob is binary content, base64-encoded on the wire.
	ContentBlob
)

// String returns the human-readable name of the content kind.
func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// ToolSchema describes one tool offered by a server.
type ToolSchema struct {
	// Name is the unique tool identifier used in CallTool.
	Name string

	// Description is the human/model-readable purpose of the tool.
	Description string

	// InputSchema is the JSON Schema for the tool's arguments.
	InputSchema map[string]any
}

// ResourceDescriptor describes one resource offered by a server.
type ResourceDescriptor struct {
	// URI uniquely identifies the resource (e.g. "users-management://flow-diagram").
	URI string

	// Name is the resource's display name.
	Name string

	// MIMEType is the declared media type, if any.
	MIMEType string

	// Description is the human-readable purpose of the resource.
	Description string
}

// PromptDescriptor describes one prompt template offered by a server.
type PromptDescriptor struct {
	// Name is the unique prompt identifier used in GetPrompt.
	Name string

	// Description is the human-readable purpose of the prompt.
	Description string
}

// Catalog is the aggregated discovery result for a session: everything the
// server offers, fetched once after the handshake.
type Catalog struct {
	Tools     []ToolSchema
	Resources []ResourceDescriptor
	Prompts   []PromptDescriptor
}

// ToolResult is the outcome of a single tool invocation.
type ToolResult struct {
	// Kind discriminates Text vs Blob content.
	Kind ContentKind

	// Text holds the concatenated text content when Kind is ContentText.
	Text string

	// Blob holds the decoded binary content when Kind is ContentBlob.
	Blob []byte

	// IsError indicates an application-level tool failure. The transport
	// succeeded; the tool itself reported an error.
	IsError bool
}

// ResourceContent is one content item of a resource read.
type ResourceContent struct {
	// URI identifies which resource this content belongs to.
	URI string

	// MIMEType is the media type of this content item.
	MIMEType string

	// Kind discriminates Text vs Blob content.
	Kind ContentKind

	// Text holds the content when Kind is ContentText.
	Text string

	// Blob holds the decoded binary content when Kind is ContentBlob.
	Blob []byte
}

// Session is a live, initialised MCP protocol session.
//
// Implementations own the transport and the protocol handshake; callers see
// only typed operations. All methods except Close return ErrNotConnected when
// the session is not open.
type Session interface {
	// ListTools returns the server's tool catalogue.
	ListTools(ctx context.Context) ([]ToolSchema, error)

	// ListResources returns the server's resource catalogue.
	ListResources(ctx context.Context) ([]ResourceDescriptor, error)

	// ListPrompts returns the server's prompt catalogue.
	ListPrompts(ctx context.Context) ([]PromptDescriptor, error)

	// GetPrompt resolves the named prompt template and returns its text
	// segments joined by newlines.
	GetPrompt(ctx context.Context, name string) (string, error)

	// ReadResource fetches the contents of the resource identified by uri.
	ReadResource(ctx context.Context, uri string) ([]ResourceContent, error)

	// CallTool invokes the named tool with JSON-encoded args. A non-nil
	// ToolResult with IsError set means the tool itself failed; a Go error
	// means transport or protocol failure.
	CallTool(ctx context.Context, name string, args string) (*ToolResult, error)

	// Close terminates the session. Closing an already-closed session is a
	// no-op.
	Close() error
}
