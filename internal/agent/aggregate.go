package agent

import (
	"sort"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

// partialCall is one tool call being reconstructed from stream fragments.
type partialCall struct {
	id   string
	name string
	args []byte
}

// Aggregator reconstructs assistant output from a stream of raw chunks.
//
// Providers emit tool calls as fragments keyed by index: the first fragment
// for an index usually carries the call ID and function name, later fragments
// carry slices of the JSON argument string. The aggregator merges fragments
// per index (ID and name overwrite when present, argument fragments
// concatenate in arrival order) and accumulates plain text into a single
// buffer regardless of which chunk carried it.
//
// Not safe for concurrent use; the stream consumer owns it.
type Aggregator struct {
	content []byte
	calls   map[int]*partialCall
	order   []int
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{calls: make(map[int]*partialCall)}
}

// Add folds one chunk into the aggregate.
func (a *Aggregator) Add(chunk llm.Chunk) {
	a.content = append(a.content, chunk.Text...)

	for _, d := range chunk.ToolCallDeltas {
		call, ok := a.calls[d.Index]
		if !ok {
			call = &partialCall{}
			a.calls[d.Index] = call
			a.order = append(a.order, d.Index)
		}
		if d.ID != "" {
			call.id = d.ID
		}
		if d.Name != "" {
			call.name = d.Name
		}
		call.args = append(call.args, d.Arguments...)
	}
}

// Content returns all accumulated text.
func (a *Aggregator) Content() string {
	return string(a.content)
}

// ToolCalls returns the reconstructed calls in ascending index order.
// Calls that never received an ID or name are still returned; the dispatcher
// decides what to do with incomplete calls.
func (a *Aggregator) ToolCalls() []types.ToolCall {
	if len(a.calls) == 0 {
		return nil
	}
	indexes := make([]int, len(a.order))
	copy(indexes, a.order)
	sort.Ints(indexes)

	calls := make([]types.ToolCall, 0, len(indexes))
	for _, i := range indexes {
		c := a.calls[i]
		calls = append(calls, types.ToolCall{
			ID:        c.id,
			Name:      c.name,
			Arguments: string(c.args),
		})
	}
	return calls
}
