// Package types defines the shared types used across all packages of the
// user-management agent.
//
// These types form the lingua franca between the LLM providers, the MCP
// session layer, and the agent orchestrator. They are intentionally minimal —
// each package defines its own domain types, but cross-cutting data structures
// live here to avoid circular imports.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role identifies who produced a conversation message.
type Role string

const (
	// RoleSystem carries the agent's behaviour instructions.
	RoleSystem Role = "system"

	// RoleUser is a human message in the conversation.
	RoleUser Role = "user"

	// RoleAssistant is a model response, carrying text and/or tool calls.
	RoleAssistant Role = "assistant"

	// RoleTool is a tool execution result, correlated to its originating
	// call via [Message.ToolCallID].
	RoleTool Role = "tool"
)

// IsValid reports whether r is a recognised role.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message represents a single turn in an LLM conversation history.
//
// Messages are immutable once appended to a history; components that produce
// follow-up turns return new Message values for the orchestrator to append.
type Message struct {
	// Role is one of system, user, assistant, or tool.
	Role Role

	// Content is the text content of the message. Empty for assistant turns
	// that respond exclusively with tool calls.
	Content string

	// Name is an optional participant name.
	Name string

	// ToolCalls contains the tool invocations requested by the assistant.
	// Only set on assistant messages.
	ToolCalls []ToolCall

	// ToolCallID is set when Role is tool, identifying which tool call this
	// message responds to.
	ToolCallID string
}

// ToolCall represents a tool/function invocation requested by the model.
type ToolCall struct {
	// ID is the opaque correlation token assigned by the model provider.
	ID string

	// Name is the tool name.
	Name string

	// Arguments is the JSON-encoded arguments string, accumulated verbatim
	// from the response stream. It is parsed into a structured object only
	// at dispatch time.
	Arguments string
}

// wireFunction is the function body of a serialized tool call.
type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// wireToolCall is the model-facing form of a ToolCall.
type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

// wireMessage is the model-facing form of a Message. Absent optional fields
// must be omitted entirely — the model endpoint mishandles explicit nulls.
type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

// MarshalJSON serializes m into the chat-completions wire format. The role
// key is always present; content, name, tool_call_id and tool_calls are
// omitted when unset.
func (m Message) MarshalJSON() ([]byte, error) {
	if !m.Role.IsValid() {
		return nil, fmt.Errorf("types: cannot serialize message with role %q", m.Role)
	}
	w := wireMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		w.ToolCalls = append(w.ToolCalls, wireToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: wireFunction{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
