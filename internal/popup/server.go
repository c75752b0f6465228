package popup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// Prompter shows a single popup to the user and returns the raw response
type Prompter interface {
	Prompt(ctx context.Context, req *Request) (string, error)
}

// Server is the popup host: it accepts popups from MCP servers over a Unix
// socket and shows them one at a time.
type Server struct {
	socketPath string
	prompter   Prompter
	logger     *log.Logger

	listener net.Listener
	mu       sync.Mutex // held while a popup is on screen
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// DefaultSocketPath returns the per-user socket path used when none is configured
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("zhi-%d.sock", os.Getuid()))
}

// NewServer creates a popup host listening on socketPath
func NewServer(socketPath string, prompter Prompter, logger *log.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		prompter:   prompter,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// SocketPath returns the path to the Unix socket
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for connections
func (s *Server) Start(ctx context.Context) error {
	// A previous host may have left its socket behind
	_ = os.Remove(s.socketPath)

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}
	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	return nil
}

// Stop closes the listener, waits for in-flight popups and removes the socket
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.wg.Wait()
		_ = os.Remove(s.socketPath)
	})
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "err", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	var env Envelope
	if err := json.NewDecoder(conn).Decode(&env); err != nil {
		s.reply(conn, Reply{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	switch {
	case env.Type != envelopeTypePopup:
		s.reply(conn, Reply{Error: fmt.Sprintf("unknown request type: %s", env.Type)})
	case env.Popup == nil:
		s.reply(conn, Reply{Error: "missing popup in request"})
	default:
		connCtx, cancel := context.WithCancel(ctx)
		gone := watchPeer(conn, cancel)
		s.reply(conn, s.show(connCtx, env.Popup))
		cancel()
		_ = conn.Close()
		<-gone
	}
}

// watchPeer cancels when the client hangs up. Clients send nothing after the
// envelope, so any read result means the connection is finished.
func watchPeer(conn net.Conn, cancel context.CancelFunc) <-chan struct{} {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_, _ = io.Copy(io.Discard, conn)
		cancel()
	}()
	return gone
}

// show serializes popups so only one form is on screen at a time
func (s *Server) show(ctx context.Context, req *Request) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With("id", req.ID)
	if req.ClientName != nil {
		logger = logger.With("client", *req.ClientName)
	}
	if err := ctx.Err(); err != nil {
		logger.Debug("skipping abandoned popup")
		return Reply{Error: fmt.Sprintf("popup abandoned: %v", err)}
	}

	logger.Debug("showing popup")

	raw, err := s.prompter.Prompt(ctx, req)
	if err != nil && ctx.Err() != nil {
		logger.Debug("caller gave up on popup", "err", err)
		return Reply{Error: err.Error()}
	}
	if err != nil {
		logger.Error("popup failed", "err", err)
		return Reply{Error: err.Error()}
	}

	logger.Debug("popup answered")
	return Reply{Success: true, Response: raw}
}

func (s *Server) reply(conn net.Conn, r Reply) {
	if err := json.NewEncoder(conn).Encode(r); err != nil {
		s.logger.Warn("failed to send reply", "err", err)
	}
}
