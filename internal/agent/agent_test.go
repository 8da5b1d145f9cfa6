package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
	mcpmock "github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp/mock"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
	llmmock "github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm/mock"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

func userHistory(text string) []types.Message {
	return []types.Message{
		{Role: types.RoleSystem, Content: "be helpful"},
		{Role: types.RoleUser, Content: text},
	}
}

func TestCompletionPlainText(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		StreamChunks: []llm.Chunk{
			{Text: "Hi "},
			{Text: "there."},
			{FinishReason: "stop"},
		},
	}
	session := &mcpmock.Session{}
	a := New(provider, NewDispatcher(session), nil)

	history := userHistory("hello")
	got, err := a.Completion(context.Background(), history)
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	last := got[2]
	if last.Role != types.RoleAssistant || last.Content != "Hi there." {
		t.Errorf("last = %+v, want assistant text", last)
	}
	if len(provider.StreamCalls) != 1 {
		t.Errorf("stream calls = %d, want exactly 1 turn", len(provider.StreamCalls))
	}
	if len(session.CallToolCalls) != 0 {
		t.Errorf("tool calls = %d, want 0", len(session.CallToolCalls))
	}
}

func TestCompletionToolRoundThenAnswer(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		Script: [][]llm.Chunk{
			{
				{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "get_user_by_id"}}},
				{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: `{"user_id":7}`}}},
			},
			{
				{Text: "User 7 is Ada."},
			},
		},
	}
	session := &mcpmock.Session{
		ToolResults: map[string]*mcp.ToolResult{
			"get_user_by_id": {Kind: mcp.ContentText, Text: `{"id":7,"name":"Ada"}`},
		},
	}
	a := New(provider, NewDispatcher(session), nil)

	history := userHistory("who is user 7?")
	got, err := a.Completion(context.Background(), history)
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	// system, user, assistant(tool call), tool result, assistant(text)
	if len(got) != 5 {
		t.Fatalf("len(got) = %d, want 5", len(got))
	}

	assistant := got[2]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Name != "get_user_by_id" {
		t.Errorf("got[2] = %+v, want assistant with tool call", assistant)
	}
	if assistant.ToolCalls[0].Arguments != `{"user_id":7}` {
		t.Errorf("Arguments = %q, want reassembled JSON", assistant.ToolCalls[0].Arguments)
	}

	toolMsg := got[3]
	if toolMsg.Role != types.RoleTool || toolMsg.ToolCallID != "call_1" {
		t.Errorf("got[3] = %+v, want tool result for call_1", toolMsg)
	}

	final := got[4]
	if final.Role != types.RoleAssistant || final.Content != "User 7 is Ada." {
		t.Errorf("got[4] = %+v, want final assistant text", final)
	}

	if len(provider.StreamCalls) != 2 {
		t.Errorf("stream calls = %d, want 2", len(provider.StreamCalls))
	}
	// Second turn must see the tool result.
	secondReq := provider.StreamCalls[1].Req
	if len(secondReq.Messages) != 4 {
		t.Errorf("second turn saw %d messages, want 4", len(secondReq.Messages))
	}
}

func TestCompletionMaxTurns(t *testing.T) {
	t.Parallel()

	// Every turn asks for a tool, so the budget must trip.
	provider := &llmmock.Provider{
		StreamChunks: []llm.Chunk{
			{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "search_user", Arguments: "{}"}}},
		},
	}
	session := &mcpmock.Session{
		ToolResults: map[string]*mcp.ToolResult{
			"search_user": {Kind: mcp.ContentText, Text: "[]"},
		},
	}
	a := New(provider, NewDispatcher(session), nil, WithMaxTurns(3))

	_, err := a.Completion(context.Background(), userHistory("loop forever"))
	if !errors.Is(err, ErrMaxTurns) {
		t.Fatalf("err = %v, want ErrMaxTurns", err)
	}
	if len(provider.StreamCalls) != 3 {
		t.Errorf("stream calls = %d, want 3", len(provider.StreamCalls))
	}
}

func TestCompletionStreamStartFailure(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{StreamErr: errors.New("401 unauthorized")}
	a := New(provider, NewDispatcher(&mcpmock.Session{}), nil)

	history := userHistory("hello")
	got, err := a.Completion(context.Background(), history)
	if err == nil {
		t.Fatal("Completion should fail when the stream cannot start")
	}
	if got != nil {
		t.Errorf("got = %v, want nil on failure", got)
	}
	// Caller history must survive the failed cycle untouched.
	if len(history) != 2 || history[1].Content != "hello" {
		t.Errorf("history mutated: %+v", history)
	}
}

func TestCompletionStreamError(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		StreamChunks: []llm.Chunk{
			{Text: "partial "},
			{FinishReason: llm.FinishError, Text: "rate limited"},
		},
	}
	a := New(provider, NewDispatcher(&mcpmock.Session{}), nil)

	_, err := a.Completion(context.Background(), userHistory("hello"))
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v, want stream error mentioning cause", err)
	}
}

func TestCompletionCancellation(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		StreamChunks: []llm.Chunk{{Text: "hi"}},
	}
	a := New(provider, NewDispatcher(&mcpmock.Session{}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := a.Completion(ctx, userHistory("hello"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got != nil {
		t.Errorf("got = %v, want nil on cancellation", got)
	}
}

func TestCompletionStreamsTextToSink(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		StreamChunks: []llm.Chunk{
			{Text: "Hello"},
			{Text: ", world"},
		},
	}
	var sink strings.Builder
	a := New(provider, NewDispatcher(&mcpmock.Session{}), nil, WithTextSink(&sink))

	if _, err := a.Completion(context.Background(), userHistory("hi")); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if sink.String() != "Hello, world" {
		t.Errorf("sink = %q, want streamed text", sink.String())
	}
}

func TestCompletionAdvertisesTools(t *testing.T) {
	t.Parallel()

	tools := []llm.ToolDefinition{
		{Name: "get_user_by_id", Parameters: map[string]any{"type": "object"}},
	}
	provider := &llmmock.Provider{
		StreamChunks: []llm.Chunk{{Text: "ok"}},
	}
	a := New(provider, NewDispatcher(&mcpmock.Session{}), tools)

	if _, err := a.Completion(context.Background(), userHistory("hi")); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	req := provider.StreamCalls[0].Req
	if len(req.Tools) != 1 || req.Tools[0].Name != "get_user_by_id" {
		t.Errorf("req.Tools = %+v, want advertised catalogue", req.Tools)
	}
}
