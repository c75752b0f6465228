package popup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RequestFlag is the flag the popup command receives the request file with
const RequestFlag = "--request"

// TerminalPath is where terminal popup commands draw their form
const TerminalPath = "/dev/tty"

// Command shows popups by running an external popup program once per request.
// The program is called as `<name> <args...> --request <file>` and must print
// the raw response on stdout.
type Command struct {
	name         string
	args         []string
	interactive  bool
	openTerminal func() (*terminal, error)
}

// terminal is where an interactive popup program reads keys and draws its form
type terminal struct {
	in  *os.File
	out *os.File
}

func (t *terminal) Close() {
	_ = t.in.Close()
	if t.out != t.in {
		_ = t.out.Close()
	}
}

func openControllingTerminal() (*terminal, error) {
	f, err := os.OpenFile(TerminalPath, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &terminal{in: f, out: f}, nil
}

// NewCommand creates a presenter that runs name with args. The program gets
// no stdin and its stderr is reported when it fails.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: args, openTerminal: openControllingTerminal}
}

// NewTerminalCommand creates a presenter for a program that draws its form on
// stderr. The program's stdin and stderr are attached to the controlling
// terminal, and Present fails without running it when there is none.
func NewTerminalCommand(name string, args ...string) *Command {
	c := NewCommand(name, args...)
	c.interactive = true
	return c
}

// Interactive reports whether the program runs on the controlling terminal
func (c *Command) Interactive() bool {
	return c.interactive
}

// Present writes req to a temporary file and runs the popup program on it
func (c *Command) Present(ctx context.Context, req *Request) (string, error) {
	path, err := writeRequestFile(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(path) }()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.name, c.buildArgs(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if c.interactive {
		tty, err := c.openTerminal()
		if err != nil {
			return "", fmt.Errorf("popup command %s needs a terminal: %w", c, err)
		}
		defer tty.Close()
		cmd.Stdin = tty.in
		cmd.Stderr = tty.out
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("popup command failed: %w: %s", err, msg)
		}
		if c.interactive {
			return "", fmt.Errorf("popup command failed: %w (details on %s)", err, TerminalPath)
		}
		return "", fmt.Errorf("popup command failed: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("popup command returned no response")
	}
	return out, nil
}

func (c *Command) buildArgs(path string) []string {
	args := make([]string, 0, len(c.args)+2)
	args = append(args, c.args...)
	return append(args, RequestFlag, path)
}

// String returns the command line without the request file
func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

func writeRequestFile(req *Request) (string, error) {
	f, err := os.CreateTemp("", "zhi-popup-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create request file: %w", err)
	}

	if err := json.NewEncoder(f).Encode(req); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write request file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write request file: %w", err)
	}

	return f.Name(), nil
}

// ReadRequestFile loads a request written for a popup command
func ReadRequestFile(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	return &req, nil
}
