package agent

import (
	"reflect"
	"testing"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

func aggregate(chunks []llm.Chunk) *Aggregator {
	agg := NewAggregator()
	for _, c := range chunks {
		agg.Add(c)
	}
	return agg
}

func TestAggregateEmptyStream(t *testing.T) {
	t.Parallel()

	agg := aggregate(nil)
	if agg.Content() != "" {
		t.Errorf("Content() = %q, want empty", agg.Content())
	}
	if agg.ToolCalls() != nil {
		t.Errorf("ToolCalls() = %v, want nil", agg.ToolCalls())
	}
}

func TestAggregateTextOnly(t *testing.T) {
	t.Parallel()

	agg := aggregate([]llm.Chunk{
		{Text: "Hello"},
		{Text: ", "},
		{Text: "world"},
		{FinishReason: "stop"},
	})
	if got := agg.Content(); got != "Hello, world" {
		t.Errorf("Content() = %q, want %q", got, "Hello, world")
	}
	if agg.ToolCalls() != nil {
		t.Errorf("ToolCalls() = %v, want nil", agg.ToolCalls())
	}
}

func TestAggregateReassemblesArgumentsInOrder(t *testing.T) {
	t.Parallel()

	agg := aggregate([]llm.Chunk{
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "search_user"}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: `{"que`}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: `ry":"sm`}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: `ith"}`}}},
	})

	want := []types.ToolCall{
		{ID: "call_1", Name: "search_user", Arguments: `{"query":"smith"}`},
	}
	if got := agg.ToolCalls(); !reflect.DeepEqual(got, want) {
		t.Errorf("ToolCalls() = %+v, want %+v", got, want)
	}
}

func TestAggregatePartitionsByIndex(t *testing.T) {
	t.Parallel()

	// Fragments for two calls arrive interleaved; each index accumulates
	// independently and the output is ordered by index.
	agg := aggregate([]llm.Chunk{
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 1, ID: "call_b", Name: "delete_user"}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "call_a", Name: "get_user_by_id"}}},
		{ToolCallDeltas: []llm.ToolCallDelta{
			{Index: 0, Arguments: `{"user_id":`},
			{Index: 1, Arguments: `{"user_id":9`},
		}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: `7}`}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 1, Arguments: `9}`}}},
	})

	want := []types.ToolCall{
		{ID: "call_a", Name: "get_user_by_id", Arguments: `{"user_id":7}`},
		{ID: "call_b", Name: "delete_user", Arguments: `{"user_id":99}`},
	}
	if got := agg.ToolCalls(); !reflect.DeepEqual(got, want) {
		t.Errorf("ToolCalls() = %+v, want %+v", got, want)
	}
}

func TestAggregateLaterIdentityOverwrites(t *testing.T) {
	t.Parallel()

	agg := aggregate([]llm.Chunk{
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "tmp", Name: "draft"}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "call_final", Name: "add_user"}}},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: "{}"}}},
	})

	calls := agg.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if calls[0].ID != "call_final" || calls[0].Name != "add_user" {
		t.Errorf("calls[0] = %+v, want overwritten identity", calls[0])
	}
}

func TestAggregateMixedTextAndCalls(t *testing.T) {
	t.Parallel()

	// Text accumulates into one buffer no matter which chunks carried it.
	agg := aggregate([]llm.Chunk{
		{Text: "Looking that up"},
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "get_user_by_id", Arguments: `{"user_id":1}`}}},
		{Text: " now."},
	})

	if got := agg.Content(); got != "Looking that up now." {
		t.Errorf("Content() = %q, want %q", got, "Looking that up now.")
	}
	if calls := agg.ToolCalls(); len(calls) != 1 || calls[0].Name != "get_user_by_id" {
		t.Errorf("ToolCalls() = %+v, want single get_user_by_id", calls)
	}
}

func TestAggregateIncompleteCallStillEmitted(t *testing.T) {
	t.Parallel()

	agg := aggregate([]llm.Chunk{
		{ToolCallDeltas: []llm.ToolCallDelta{{Index: 0, Arguments: `{"par`}}},
	})

	calls := agg.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if calls[0].ID != "" || calls[0].Name != "" || calls[0].Arguments != `{"par` {
		t.Errorf("calls[0] = %+v, want incomplete call passed through", calls[0])
	}
}
