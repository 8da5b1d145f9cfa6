// Package console implements the interactive chat loop of the agent binary.
//
// It reads user turns from an input stream, routes them through the agent
// completion loop and keeps the full conversation history alive until the
// user quits. The reader and writer are injectable so the loop is testable
// without a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/types"
)

// Completer produces the extended conversation for one user turn. It is
// implemented by [agent.Agent].
type Completer interface {
	Completion(ctx context.Context, history []types.Message) ([]types.Message, error)
}

// Console drives the interactive read/complete/print loop.
type Console struct {
	completer Completer
	in        io.Reader
	out       io.Writer
	logger    *slog.Logger
}

// Option configures a [Console].
type Option func(*Console)

// WithInput sets the stream user turns are read from. Defaults to stdin.
func WithInput(r io.Reader) Option {
	return func(c *Console) { c.in = r }
}

// WithOutput sets the stream prompts and errors are written to. Defaults to
// stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Console) { c.out = w }
}

// WithLogger sets the logger used for loop diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) { c.logger = logger }
}

// New creates a console loop around completer.
func New(completer Completer, opts ...Option) *Console {
	c := &Console{
		completer: completer,
		in:        os.Stdin,
		out:       os.Stdout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SeedHistory builds the initial conversation: the system prompt followed by
// one user message per discovered server prompt. Prompts without a
// description fall back to their name.
func SeedHistory(systemPrompt string, prompts []mcp.PromptDescriptor) []types.Message {
	history := []types.Message{{Role: types.RoleSystem, Content: systemPrompt}}
	for _, p := range prompts {
		content := p.Description
		if content == "" {
			content = p.Name
		}
		history = append(history, types.Message{Role: types.RoleUser, Content: content})
	}
	return history
}

// Run executes the chat loop until the user quits, the input stream ends or
// ctx is cancelled. A failed completion is reported to the user and the loop
// continues with the history as it stood before the model was called, so a
// transient provider failure never loses the conversation.
func (c *Console) Run(ctx context.Context, seed []types.Message) error {
	history := slices.Clone(seed)
	scanner := bufio.NewScanner(c.in)

	fmt.Fprintln(c.out, "User Management Agent is ready. Type your message (type 'exit', 'quit', or 'q' to stop):")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "You: ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("console: read input: %w", err)
			}
			// EOF counts as a quit.
			fmt.Fprintln(c.out)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit", "q":
			fmt.Fprintln(c.out, "Exiting chat. Goodbye!")
			return nil
		case "":
			continue
		}

		history = append(history, types.Message{Role: types.RoleUser, Content: line})

		updated, err := c.completer.Completion(ctx, history)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("completion failed", "err", err)
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		history = updated
		fmt.Fprintln(c.out)
	}
}
