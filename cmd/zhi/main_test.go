package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/martinemde/zhi/internal/config"
	"github.com/martinemde/zhi/internal/history"
	"github.com/martinemde/zhi/internal/popup"
)

// isolate keeps tests away from the user's config, history and .env
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, name := range []string{"ZHI_TRANSPORT", "ZHI_POPUP_SOCK", "ZHI_POPUP_COMMAND", "ZHI_HISTORY", "ZHI_HISTORY_PATH", "ZHI_LOG_LEVEL", "ZHI_COLOR"} {
		t.Setenv(name, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run([]string{"zhi", "--version"}, strings.NewReader(""), &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(stdout.String(), "zhi version") {
		t.Errorf("Version output should contain 'zhi version', got: %s", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run([]string{"zhi", "--help"}, strings.NewReader(""), &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := stdout.String()
	for _, expected := range []string{"Usage:", "Commands:", "mcp", "ui", "history", "--config", "--color"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestRun_NoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if err := run([]string{"zhi"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Error("No arguments should print help")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	err := run([]string{"zhi", "frobnicate"}, strings.NewReader(""), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Expected unknown command error, got: %v", err)
	}
}

func TestRun_Completion(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if err := run([]string{"zhi", "completion", "bash"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "complete -F _zhi_completions zhi") {
		t.Error("Expected bash completion script")
	}

	err := run([]string{"zhi", "completion"}, strings.NewReader(""), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "bash|fish|zsh") {
		t.Errorf("Missing shell should print usage, got: %v", err)
	}
}

func TestRun_PopupRequiresRequest(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	err := run([]string{"zhi", "popup"}, strings.NewReader(""), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "--request") {
		t.Errorf("Expected --request error, got: %v", err)
	}
}

func TestRun_InvalidColor(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	err := run([]string{"zhi", "--color", "rainbow", "history"}, strings.NewReader(""), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "invalid color mode") {
		t.Errorf("Expected color error, got: %v", err)
	}
}

func TestRun_History(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "data", "zhi", "history.db")

	store, err := history.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	for i, client := range []string{"agent-1", "agent-2"} {
		err := store.Record(context.Background(), history.Entry{
			ID:         client,
			ClientName: client,
			Message:    "Question from " + client,
			Status:     history.StatusAnswered,
			Response:   "ok",
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	_ = store.Close()

	var stdout, stderr bytes.Buffer
	err = run([]string{"zhi", "--color", "never", "history", "--client", "agent-1"}, strings.NewReader(""), &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "Question from agent-1") {
		t.Errorf("History should list agent-1, got: %s", out)
	}
	if strings.Contains(out, "agent-2") {
		t.Errorf("History should be filtered by client, got: %s", out)
	}
}

func TestRun_HistoryDisabled(t *testing.T) {
	isolate(t)
	t.Setenv("ZHI_HISTORY", "false")
	var stdout, stderr bytes.Buffer

	err := run([]string{"zhi", "history"}, strings.NewReader(""), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Errorf("Expected disabled error, got: %v", err)
	}
}

func TestNewPresenter(t *testing.T) {
	cfg := config.Default()
	cfg.SocketPath = "/tmp/test.sock"

	p, err := newPresenter(cfg)
	if err != nil {
		t.Fatal(err)
	}
	client, ok := p.(*popup.Client)
	if !ok {
		t.Fatalf("Socket transport should use *popup.Client, got %T", p)
	}
	if client.SocketPath() != "/tmp/test.sock" {
		t.Errorf("Unexpected socket path: %s", client.SocketPath())
	}

	cfg.Transport = config.TransportExec
	cfg.PopupCommand = []string{"my-popup", "--flag"}
	p, err = newPresenter(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok := p.(*popup.Command)
	if !ok {
		t.Fatalf("Exec transport should use *popup.Command, got %T", p)
	}
	if cmd.String() != "my-popup --flag" {
		t.Errorf("Unexpected command: %s", cmd.String())
	}
	if cmd.Interactive() {
		t.Error("Custom popup commands should not be attached to the terminal")
	}

	cfg.PopupCommand = nil
	p, err = newPresenter(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok = p.(*popup.Command)
	if !ok {
		t.Fatalf("Exec transport should use *popup.Command, got %T", p)
	}
	if !cmd.Interactive() {
		t.Error("The built-in popup should run on the controlling terminal")
	}
	if !strings.HasSuffix(cmd.String(), " popup") {
		t.Errorf("Default command should run zhi popup, got: %s", cmd.String())
	}
}
