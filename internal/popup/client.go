package popup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// DefaultDialTimeout bounds connecting to the popup host
const DefaultDialTimeout = 5 * time.Second

// Client sends popups to a running popup host over a Unix socket
type Client struct {
	socketPath  string
	dialTimeout time.Duration
}

// NewClient creates a client for the popup host at socketPath
func NewClient(socketPath string, dialTimeout time.Duration) *Client {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &Client{socketPath: socketPath, dialTimeout: dialTimeout}
}

// SocketPath returns the socket the client connects to
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Present sends req to the popup host and waits for the user's response.
// The wait is bounded only by ctx.
func (c *Client) Present(ctx context.Context, req *Request) (string, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return "", fmt.Errorf("failed to connect to popup host at %s: %w", c.socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	// Unblock reads if the caller gives up
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := json.NewEncoder(conn).Encode(Envelope{Type: envelopeTypePopup, Popup: req}); err != nil {
		return "", c.ioError(ctx, "failed to send popup", err)
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return "", c.ioError(ctx, "failed to read popup response", err)
	}

	if !reply.Success {
		return "", fmt.Errorf("popup failed: %s", reply.Error)
	}

	return reply.Response, nil
}

func (c *Client) ioError(ctx context.Context, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", msg, ctxErr)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
