package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/observe"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

// defaultToolTimeout bounds a single tool invocation when no timeout is
// configured.
const defaultToolTimeout = 30 * time.Second

// Dispatcher executes the tool calls of one model turn against an MCP
// session and turns each outcome into a tool-role message.
//
// Dispatch never returns an error: every failure mode (malformed arguments,
// transport failure, application-level tool error) becomes the content of a
// tool message carrying the originating call ID, so the model can read the
// failure and react in the next turn.
type Dispatcher struct {
	session  mcp.Session
	timeout  time.Duration
	parallel bool
	logger   *slog.Logger
	metrics  *observe.Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithToolTimeout bounds each tool invocation. Non-positive values keep the
// default.
func WithToolTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithParallelDispatch executes the calls of a turn concurrently. Result
// order still matches call order.
func WithParallelDispatch(parallel bool) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.parallel = parallel
	}
}

// WithDispatchLogger overrides the default slog logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.logger = l
		}
	}
}

// WithDispatchMetrics overrides the default metrics instance.
func WithDispatchMetrics(m *observe.Metrics) DispatcherOption {
	return func(disp *Dispatcher) {
		if m != nil {
			disp.metrics = m
		}
	}
}

// NewDispatcher creates a Dispatcher bound to the given session.
func NewDispatcher(session mcp.Session, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		session: session,
		timeout: defaultToolTimeout,
		logger:  slog.Default(),
		metrics: observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes every call and returns exactly one tool message per
// call, in call order.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []types.ToolCall) []types.Message {
	if len(calls) == 0 {
		return nil
	}

	results := make([]types.Message, len(calls))

	if !d.parallel {
		for i, call := range calls {
			results[i] = d.dispatchOne(ctx, call)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = d.dispatchOne(gctx, call)
			return nil
		})
	}
	// Workers never return errors; failures are encoded in the messages.
	_ = g.Wait()
	return results
}

// dispatchOne executes a single call and renders its outcome as a tool message.
func (d *Dispatcher) dispatchOne(ctx context.Context, call types.ToolCall) types.Message {
	// Arguments must decode to a JSON object; anything else (truncated
	// stream, bare scalar, array) is replaced so the call is still attempted.
	args := call.Arguments
	var parsed map[string]any
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		d.logger.Warn("tool call arguments are not a JSON object, invoking with empty arguments",
			"tool", call.Name, "call_id", call.ID)
		args = "{}"
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	result, err := d.session.CallTool(callCtx, call.Name, args)
	elapsed := time.Since(start)
	d.metrics.ToolExecutionDuration.Record(ctx, elapsed.Seconds())

	msg := types.Message{
		Role:       types.RoleTool,
		Name:       call.Name,
		ToolCallID: call.ID,
	}

	if err != nil {
		d.logger.Error("tool invocation failed",
			"tool", call.Name, "call_id", call.ID, "duration", elapsed, "error", err)
		d.metrics.RecordToolCall(ctx, call.Name, "error")
		msg.Content = fmt.Sprintf("Tool %q failed: %v", call.Name, err)
		return msg
	}

	status := "ok"
	if result.IsError {
		status = "tool_error"
	}
	d.metrics.RecordToolCall(ctx, call.Name, status)

	if result.IsError {
		d.logger.Warn("tool reported an error",
			"tool", call.Name, "call_id", call.ID, "duration", elapsed)
	} else {
		d.logger.Debug("tool invocation succeeded",
			"tool", call.Name, "call_id", call.ID, "duration", elapsed)
	}

	switch result.Kind {
	case mcp.ContentBlob:
		// Binary tool output cannot be fed back as chat text.
		msg.Content = fmt.Sprintf("Tool %q returned %d bytes of binary content", call.Name, len(result.Blob))
	default:
		msg.Content = result.Text
	}
	return msg
}
