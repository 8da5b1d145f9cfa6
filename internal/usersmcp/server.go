// Package usersmcp exposes the users-management service as an MCP server:
// five CRUD tools, a flow-diagram resource, and two guidance prompts, built
// on the official MCP Go SDK.
package usersmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/users"
)

// FlowDiagramURI identifies the API flow diagram resource.
const FlowDiagramURI = "users-management://flow-diagram"

// UserStore is the slice of the users REST client the tools need.
type UserStore interface {
	GetUser(ctx context.Context, userID int) (string, error)
	SearchUsers(ctx context.Context, q users.SearchQuery) (string, error)
	AddUser(ctx context.Context, user users.UserCreate) (string, error)
	UpdateUser(ctx context.Context, userID int, update users.UserUpdate) (string, error)
	DeleteUser(ctx context.Context, userID int) (string, error)
}

// Config configures the MCP server.
type Config struct {
	// Store backs the CRUD tools.
	Store UserStore

	// FlowDiagramPath is the PNG file served as the flow-diagram resource.
	// Empty disables the resource.
	FlowDiagramPath string

	// Logger overrides the default slog logger.
	Logger *slog.Logger
}

// New builds a ready-to-serve MCP server. Connect it to a transport with
// server.Connect, or serve it over HTTP with [mcpsdk.NewStreamableHTTPHandler].
func New(cfg Config) (*mcpsdk.Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("usersmcp: Store must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: "users-management-mcp-server", Version: "1.0.0"},
		nil,
	)

	registerTools(server, cfg.Store, logger)
	registerPrompts(server)
	if cfg.FlowDiagramPath != "" {
		registerFlowDiagram(server, cfg.FlowDiagramPath, logger)
	}

	return server, nil
}

// textResult wraps s in a successful tool result.
func textResult(s string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: s}},
	}
}

// errorResult wraps err in an application-level tool error so the calling
// model can read the failure and react, instead of the protocol call failing.
func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}

// userIDArgs is the argument shape shared by get_user_by_id and delete_user.
type userIDArgs struct {
	UserID int `json:"user_id"`
}

// searchArgs is the argument shape of search_user.
type searchArgs struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Gender  string `json:"gender"`
}

// addUserArgs is the argument shape of add_user.
type addUserArgs struct {
	Name        string            `json:"name"`
	Surname     string            `json:"surname"`
	Email       string            `json:"email"`
	AboutMe     string            `json:"about_me"`
	Phone       string            `json:"phone"`
	DateOfBirth string            `json:"date_of_birth"`
	Gender      string            `json:"gender"`
	Company     string            `json:"company"`
	Salary      *float64          `json:"salary"`
	Address     *users.Address    `json:"address"`
	CreditCard  *users.CreditCard `json:"credit_card"`
}

// updateUserArgs is the argument shape of update_user.
type updateUserArgs struct {
	UserID int `json:"user_id"`
	addUserArgs
}

func registerTools(server *mcpsdk.Server, store UserStore, logger *slog.Logger) {
	server.AddTool(&mcpsdk.Tool{
		Name:        "get_user_by_id",
		Description: "Retrieve a single user by ID. Returns all user fields formatted as a code block.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"user_id": map[string]any{"type": "integer", "description": "Unique user identifier"},
			},
			"required": []any{"user_id"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args userIDArgs
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		logger.Info("tool called", "tool", "get_user_by_id", "user_id", args.UserID)

		out, err := store.GetUser(ctx, args.UserID)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name: "search_user",
		Description: "Search for users by optional criteria. Name, surname, and email match " +
			"partially (case-insensitive); gender matches exactly (male, female, other, " +
			"prefer_not_to_say). Omitted criteria are ignored.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    map[string]any{"type": "string", "description": "Partial first name match"},
				"surname": map[string]any{"type": "string", "description": "Partial last name match"},
				"email":   map[string]any{"type": "string", "description": "Partial email match, e.g. 'gmail' finds all Gmail users"},
				"gender":  map[string]any{"type": "string", "description": "Exact gender match"},
			},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args searchArgs
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		logger.Info("tool called", "tool", "search_user",
			"name", args.Name, "surname", args.Surname, "email", args.Email, "gender", args.Gender)

		out, err := store.SearchUsers(ctx, users.SearchQuery{
			Name:    args.Name,
			Surname: args.Surname,
			Email:   args.Email,
			Gender:  args.Gender,
		})
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name: "add_user",
		Description: "Create a new user. Required: name, surname, email, about_me. Optional: " +
			"phone (E.164), date_of_birth (YYYY-MM-DD), gender, company, salary, address, credit_card.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":          map[string]any{"type": "string", "description": "First name, 2-50 characters"},
				"surname":       map[string]any{"type": "string", "description": "Last name, 2-50 characters"},
				"email":         map[string]any{"type": "string", "description": "Unique email address"},
				"about_me":      map[string]any{"type": "string", "description": "Biography text"},
				"phone":         map[string]any{"type": "string", "description": "Phone number, E.164 format preferred"},
				"date_of_birth": map[string]any{"type": "string", "description": "Birth date, YYYY-MM-DD"},
				"gender":        map[string]any{"type": "string", "description": "male, female, other, prefer_not_to_say"},
				"company":       map[string]any{"type": "string", "description": "Company name"},
				"salary":        map[string]any{"type": "number", "description": "Annual salary in USD"},
				"address":       addressSchema(),
				"credit_card":   creditCardSchema(),
			},
			"required": []any{"name", "surname", "email", "about_me"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args addUserArgs
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		logger.Info("tool called", "tool", "add_user", "email", args.Email)

		out, err := store.AddUser(ctx, users.UserCreate{
			Name:        args.Name,
			Surname:     args.Surname,
			Email:       args.Email,
			AboutMe:     args.AboutMe,
			Phone:       args.Phone,
			DateOfBirth: args.DateOfBirth,
			Gender:      args.Gender,
			Company:     args.Company,
			Salary:      args.Salary,
			Address:     args.Address,
			CreditCard:  args.CreditCard,
		})
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name: "update_user",
		Description: "Update an existing user by ID. Only the provided fields are changed " +
			"(PATCH semantics); all fields except user_id are optional.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"user_id":       map[string]any{"type": "integer", "description": "ID of the user to update"},
				"name":          map[string]any{"type": "string"},
				"surname":       map[string]any{"type": "string"},
				"email":         map[string]any{"type": "string"},
				"phone":         map[string]any{"type": "string"},
				"date_of_birth": map[string]any{"type": "string"},
				"gender":        map[string]any{"type": "string"},
				"company":       map[string]any{"type": "string"},
				"salary":        map[string]any{"type": "number"},
				"address":       addressSchema(),
				"credit_card":   creditCardSchema(),
			},
			"required": []any{"user_id"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args updateUserArgs
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		logger.Info("tool called", "tool", "update_user", "user_id", args.UserID)

		out, err := store.UpdateUser(ctx, args.UserID, users.UserUpdate{
			Name:        args.Name,
			Surname:     args.Surname,
			Email:       args.Email,
			Phone:       args.Phone,
			DateOfBirth: args.DateOfBirth,
			Gender:      args.Gender,
			Company:     args.Company,
			Salary:      args.Salary,
			Address:     args.Address,
			CreditCard:  args.CreditCard,
		})
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "delete_user",
		Description: "Delete a user by ID.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"user_id": map[string]any{"type": "integer", "description": "ID of the user to delete"},
			},
			"required": []any{"user_id"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args userIDArgs
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		logger.Info("tool called", "tool", "delete_user", "user_id", args.UserID)

		out, err := store.DeleteUser(ctx, args.UserID)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})
}

func addressSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Complete address",
		"properties": map[string]any{
			"country":    map[string]any{"type": "string"},
			"city":       map[string]any{"type": "string"},
			"street":     map[string]any{"type": "string"},
			"flat_house": map[string]any{"type": "string"},
		},
		"required": []any{"country", "city", "street", "flat_house"},
	}
}

func creditCardSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Non-functional test payment card",
		"properties": map[string]any{
			"num":      map[string]any{"type": "string", "description": "16 digits, XXXX-XXXX-XXXX-XXXX"},
			"cvv":      map[string]any{"type": "string", "description": "3 digits"},
			"exp_date": map[string]any{"type": "string", "description": "MM/YYYY, future dates only"},
		},
		"required": []any{"num", "cvv", "exp_date"},
	}
}

// registerFlowDiagram serves the API flow diagram PNG as a blob resource.
func registerFlowDiagram(server *mcpsdk.Server, path string, logger *slog.Logger) {
	server.AddResource(&mcpsdk.Resource{
		URI:         FlowDiagramURI,
		Name:        "flow-diagram",
		MIMEType:    "image/png",
		Description: "Diagram of the users-management service API endpoints.",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		logger.Info("resource read", "uri", FlowDiagramURI)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("usersmcp: read flow diagram: %w", err)
		}
		return &mcpsdk.ReadResourceResult{
			Contents: []*mcpsdk.ResourceContents{
				{URI: FlowDiagramURI, MIMEType: "image/png", Blob: data},
			},
		}, nil
	})
}
