// Package mcpserver exposes the zhi interaction tool over MCP stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/martinemde/zhi/internal/history"
	"github.com/martinemde/zhi/internal/interaction"
	"github.com/martinemde/zhi/internal/popup"
)

// ToolName is the name agents call the interaction tool by
const ToolName = "zhi"

const toolDescription = "Ask the user a question and wait for their answer. " +
	"Supports predefined options, free text replies and image attachments. " +
	"Use it to confirm plans, request reviews or resolve ambiguity before acting."

// Recorder stores finished interactions
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Server serves the zhi tool
type Server struct {
	tool     *interaction.Tool
	toolOpts []interaction.Option
	recorder Recorder
	timeout  time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithRecorder records every call in r
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithTimeout bounds how long a call waits for the user. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithToolOptions passes options through to the interaction tool
func WithToolOptions(opts ...interaction.Option) Option {
	return func(s *Server) { s.toolOpts = append(s.toolOpts, opts...) }
}

// New creates a server that shows popups through presenter
func New(presenter interaction.Presenter, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tool = interaction.New(capturingPresenter{next: presenter}, s.toolOpts...)
	return s
}

// MCPServer builds the MCP server with the zhi tool registered
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"zhi",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv.AddTool(zhiTool(), s.handleZhi)
	return srv
}

// zhiTool describes the zhi tool's input schema
func zhiTool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription(toolDescription),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message to show the user"),
		),
		mcp.WithArray("predefined_options",
			mcp.Description("Options the user can pick from"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("is_markdown",
			mcp.Description("Render the message as markdown (default true)"),
		),
	)
}

// Serve runs the MCP server over in/out until ctx is cancelled or in closes
func (s *Server) Serve(ctx context.Context, version string, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.MCPServer(version))
	stdio.SetErrorLogger(s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))

	s.logger.Info("serving MCP on stdio", "tool", ToolName)
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}

// handleZhi handles incoming zhi tool calls
func (s *Server) handleZhi(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := parseRequest(req.Params.Arguments)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, input, clientInfoFromContext(ctx))
}

// parseRequest binds tool arguments. is_markdown defaults to true.
func parseRequest(args any) (interaction.Request, error) {
	input := interaction.Request{IsMarkdown: true}

	argBytes, err := json.Marshal(args)
	if err != nil {
		return input, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(argBytes, &input); err != nil {
		return input, fmt.Errorf("failed to parse zhi input: %w", err)
	}
	return input, nil
}

// clientInfoFromContext reads the caller's name from the MCP session.
// Sessions that never sent a client name yield nil.
func clientInfoFromContext(ctx context.Context) *interaction.ClientInfo {
	session, ok := server.ClientSessionFromContext(ctx).(server.SessionWithClientInfo)
	if !ok {
		return nil
	}
	name := session.GetClientInfo().Name
	// Sessions always hold a client info value, so an empty name means the
	// client never sent one. Treat it as absent rather than forwarding "".
	if name == "" {
		return nil
	}
	return &interaction.ClientInfo{Name: name}
}

func (s *Server) call(ctx context.Context, input interaction.Request, client *interaction.ClientInfo) (*mcp.CallToolResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	capture := &presentation{}
	ctx = context.WithValue(ctx, presentationKey{}, capture)

	start := s.now()
	result, err := s.tool.Zhi(ctx, input, client)
	elapsed := s.now().Sub(start)

	entry := history.Entry{
		ID:        capture.id(),
		Message:   input.Message,
		Options:   input.PredefinedOptions,
		CreatedAt: start,
		Duration:  elapsed,
	}
	if client != nil {
		entry.ClientName = client.Name
	}

	switch {
	case err != nil:
		entry.Status = history.StatusFailed
		entry.Error = err.Error()
	case strings.TrimSpace(capture.raw) == popup.Cancelled:
		entry.Status = history.StatusCancelled
		entry.Response = resultText(result)
	default:
		entry.Status = history.StatusAnswered
		entry.Response = resultText(result)
	}

	logger := s.logger.With("id", entry.ID, "client", entry.ClientName)
	if err != nil {
		logger.Error("interaction failed", "err", err, "duration", elapsed)
	} else {
		logger.Info("interaction finished", "status", entry.Status, "duration", elapsed)
	}

	s.record(entry)
	return result, err
}

// record stores entry; failures are only logged
func (s *Server) record(entry history.Entry) {
	if s.recorder == nil || entry.ID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record interaction", "id", entry.ID, "err", err)
	}
}

func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
