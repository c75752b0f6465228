package history

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No interactions recorded yet.") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestWrite_Entries(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{
		{
			ID:         "1",
			ClientName: "agent-1",
			Message:    "Review this diff",
			Status:     StatusAnswered,
			Response:   "Selected options: Approve",
			CreatedAt:  time.Now(),
			Duration:   1500 * time.Millisecond,
		},
		{
			ID:        "2",
			Message:   strings.Repeat("long message ", 20),
			Status:    StatusFailed,
			Error:     "popup creation failed: no host",
			CreatedAt: time.Now(),
		},
	}

	if err := Write(&buf, entries); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"✓", "agent-1", "Review this diff", "(1.5s)", "Selected options: Approve", "✗", "popup creation failed: no host", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "\n") != 4 {
		t.Errorf("Expected two lines per entry, got:\n%s", out)
	}
}
