// Package interaction implements the zhi tool: it asks the human a question
// through a popup and hands the answer back to the calling agent.
package interaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/martinemde/zhi/internal/popup"
	"github.com/martinemde/zhi/internal/response"
)

// Request is the input of the zhi tool
type Request struct {
	Message           string   `json:"message"`
	PredefinedOptions []string `json:"predefined_options"`
	IsMarkdown        bool     `json:"is_markdown"`
}

// ClientInfo identifies the agent calling the tool
type ClientInfo struct {
	Name string
}

// Presenter shows a popup and returns the user's raw response
type Presenter interface {
	Present(ctx context.Context, req *popup.Request) (string, error)
}

// ParseFunc converts a raw popup response into tool content
type ParseFunc func(raw string) ([]mcp.Content, error)

// Tool is the zhi interaction tool
type Tool struct {
	presenter Presenter
	parse     ParseFunc
	newID     func() string
}

// Option configures a Tool
type Option func(*Tool)

// WithParser replaces the response parser
func WithParser(parse ParseFunc) Option {
	return func(t *Tool) { t.parse = parse }
}

// WithIDGenerator replaces the request ID generator
func WithIDGenerator(newID func() string) Option {
	return func(t *Tool) { t.newID = newID }
}

// New creates a Tool that shows popups through presenter
func New(presenter Presenter, opts ...Option) *Tool {
	t := &Tool{
		presenter: presenter,
		parse:     response.Parse,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Zhi shows req to the user and returns their answer.
//
// The popup call blocks until the presenter returns; Zhi adds no timeout of
// its own and relies on ctx for cancellation.
func (t *Tool) Zhi(ctx context.Context, req Request, client *ClientInfo) (*mcp.CallToolResult, error) {
	popupReq := BuildPopupRequest(t.newID(), req, client)

	raw, err := t.presenter.Present(ctx, popupReq)
	if err != nil {
		return nil, NewPopupError(err.Error())
	}

	content, err := t.parse(raw)
	if err != nil {
		return nil, &ToolError{Kind: KindParse, Err: err}
	}

	return &mcp.CallToolResult{Content: content}, nil
}

// BuildPopupRequest assembles the popup for req under the given id
func BuildPopupRequest(id string, req Request, client *ClientInfo) *popup.Request {
	var clientName *string
	if client != nil {
		name := client.Name
		clientName = &name
	}

	return &popup.Request{
		ID:                id,
		Message:           req.Message,
		PredefinedOptions: normalizeOptions(req.PredefinedOptions),
		IsMarkdown:        req.IsMarkdown,
		ClientName:        clientName,
		// Stays empty until the server tracks workspace roots.
		WorkspaceName: nil,
	}
}

// normalizeOptions returns nil for an empty option list and a copy otherwise
func normalizeOptions(options []string) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, len(options))
	copy(out, options)
	return out
}
