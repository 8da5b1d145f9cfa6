// Package agent implements the model-tool completion cycle: stream a model
// turn, reconstruct its tool calls from raw fragments, execute them against
// an MCP session, feed the results back, and repeat until the model answers
// with plain text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/observe"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

// defaultMaxTurns bounds the number of model turns in one completion cycle.
const defaultMaxTurns = 10

// ErrMaxTurns is returned when a completion cycle exhausts its turn budget
// without the model producing a final text answer.
var ErrMaxTurns = errors.New("agent: max turns exceeded")

// Agent drives completion cycles against one LLM provider and one tool
// dispatcher.
//
// Safe for sequential use; a single Agent must not run overlapping
// Completion calls because the text sink is shared.
type Agent struct {
	provider   llm.Provider
	dispatcher *Dispatcher
	tools      []llm.ToolDefinition

	maxTurns    int
	temperature float64
	maxTokens   int
	sink        io.Writer
	logger      *slog.Logger
	metrics     *observe.Metrics
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxTurns bounds the number of model turns per completion cycle.
// Non-positive values keep the default.
func WithMaxTurns(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// WithTemperature sets the sampling temperature forwarded to the provider.
func WithTemperature(t float64) Option {
	return func(a *Agent) {
		a.temperature = t
	}
}

// WithMaxTokens caps the completion length forwarded to the provider.
func WithMaxTokens(n int) Option {
	return func(a *Agent) {
		a.maxTokens = n
	}
}

// WithTextSink streams assistant text to w as it arrives. Tool-call
// fragments never reach the sink.
func WithTextSink(w io.Writer) Option {
	return func(a *Agent) {
		a.sink = w
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics overrides the default metrics instance.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *Agent) {
		if m != nil {
			a.metrics = m
		}
	}
}

// New creates an Agent. tools is the catalogue advertised to the model on
// every turn; dispatcher executes whatever the model calls.
func New(provider llm.Provider, dispatcher *Dispatcher, tools []llm.ToolDefinition, opts ...Option) *Agent {
	a := &Agent{
		provider:   provider,
		dispatcher: dispatcher,
		tools:      tools,
		maxTurns:   defaultMaxTurns,
		logger:     slog.Default(),
		metrics:    observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Completion runs one full completion cycle over the given history.
//
// On success it returns the extended history: the caller's messages followed
// by every assistant and tool message the cycle produced, ending with the
// final text answer. On any failure (provider error, stream error,
// cancellation, turn budget exhausted) it returns a nil slice and an error;
// the caller's history is never mutated, so the conversation survives a
// failed turn intact.
func (a *Agent) Completion(ctx context.Context, history []types.Message) ([]types.Message, error) {
	work := slices.Clone(history)

	cycleStart := time.Now()
	defer func() {
		a.metrics.CompletionDuration.Record(ctx, time.Since(cycleStart).Seconds())
	}()

	for turn := 1; turn <= a.maxTurns; turn++ {
		assistant, err := a.streamTurn(ctx, work)
		if err != nil {
			a.metrics.RecordTurn(ctx, "error")
			return nil, err
		}

		work = append(work, assistant)

		if len(assistant.ToolCalls) == 0 {
			a.metrics.RecordTurn(ctx, "text")
			a.logger.Debug("completion cycle finished", "turns", turn)
			return work, nil
		}

		a.metrics.RecordTurn(ctx, "tool_calls")
		a.logger.Debug("dispatching tool calls", "turn", turn, "count", len(assistant.ToolCalls))

		work = append(work, a.dispatcher.Dispatch(ctx, assistant.ToolCalls)...)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w (limit %d)", ErrMaxTurns, a.maxTurns)
}

// streamTurn runs one model turn: stream, aggregate, and return the
// assistant message.
func (a *Agent) streamTurn(ctx context.Context, history []types.Message) (types.Message, error) {
	req := llm.CompletionRequest{
		Messages:    history,
		Tools:       a.tools,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}

	start := time.Now()
	ch, err := a.provider.StreamCompletion(ctx, req)
	if err != nil {
		a.metrics.RecordProviderError(ctx, "stream_start")
		return types.Message{}, fmt.Errorf("agent: start completion stream: %w", err)
	}

	agg := NewAggregator()
	var streamErr error

	for chunk := range ch {
		if chunk.FinishReason == llm.FinishError {
			streamErr = errors.New(chunk.Text)
			continue
		}
		agg.Add(chunk)
		if chunk.Text != "" && a.sink != nil {
			if _, werr := io.WriteString(a.sink, chunk.Text); werr != nil {
				a.logger.Warn("text sink write failed", "error", werr)
			}
		}
	}

	a.metrics.LLMStreamDuration.Record(ctx, time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return types.Message{}, err
	}
	if streamErr != nil {
		a.metrics.RecordProviderError(ctx, "stream")
		return types.Message{}, fmt.Errorf("agent: completion stream: %w", streamErr)
	}

	return types.Message{
		Role:      types.RoleAssistant,
		Content:   agg.Content(),
		ToolCalls: agg.ToolCalls(),
	}, nil
}
