package openai

import (
	"testing"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()
	if _, err := New("", "gpt-4o"); err == nil {
		t.Error("expected error for empty API key")
	}
	if _, err := New("sk-test", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := New("sk-test", "gpt-4o", WithBaseURL("https://dial.example.com")); err != nil {
		t.Errorf("New with base URL: %v", err)
	}
}

func TestBuildParamsPreservesToolSchema(t *testing.T) {
	t.Parallel()
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{"type": "integer"},
		},
		"required": []any{"user_id"},
	}
	req := llm.CompletionRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}},
		Tools: []llm.ToolDefinition{
			{Name: "get_user_by_id", Description: "fetch a user", Parameters: schema},
		},
		Temperature: 0.7,
		MaxTokens:   256,
	}

	params, err := buildParams("gpt-4o", req)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if len(params.Tools) != 1 {
		t.Fatalf("tools = %d, want 1", len(params.Tools))
	}
	fn := params.Tools[0].Function
	if fn.Name != "get_user_by_id" {
		t.Errorf("tool name = %q", fn.Name)
	}
	got := map[string]any(fn.Parameters)
	if got["type"] != "object" {
		t.Errorf("schema type = %v, want object (schema must pass through verbatim)", got["type"])
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.7 {
		t.Errorf("temperature = %+v, want 0.7", params.Temperature)
	}
}

func TestConvertMessageRoles(t *testing.T) {
	t.Parallel()
	cases := []types.Message{
		{Role: types.RoleSystem, Content: "you are an agent"},
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "hi there"},
		{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{{ID: "c1", Name: "search_user", Arguments: "{}"}}},
		{Role: types.RoleTool, Content: "result", ToolCallID: "c1"},
	}
	for _, m := range cases {
		if _, err := convertMessage(m); err != nil {
			t.Errorf("convertMessage(%s): %v", m.Role, err)
		}
	}

	if _, err := convertMessage(types.Message{Role: "robot"}); err == nil {
		t.Error("expected error for unknown role")
	}
}
