package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/martinemde/zhi/internal/render"
)

const messageWidth = 60

// Write prints entries as a human-readable list
func Write(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, render.DimStyle.Render("No interactions recorded yet."))
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintln(w, summaryLine(e)); err != nil {
			return err
		}
		if detail := detailLine(e); detail != "" {
			if _, err := fmt.Fprintln(w, "    "+render.DimStyle.Render(detail)); err != nil {
				return err
			}
		}
	}
	return nil
}

func summaryLine(e Entry) string {
	client := e.ClientName
	if client == "" {
		client = "-"
	}

	parts := []string{
		statusIcon(e.Status).String(),
		e.CreatedAt.Local().Format("2006-01-02 15:04"),
		render.LabelStyle.Render(client),
		render.Truncate(e.Message, messageWidth),
	}
	if e.Duration > 0 {
		parts = append(parts, render.DimStyle.Render("("+e.Duration.Round(100*time.Millisecond).String()+")"))
	}
	return strings.Join(parts, "  ")
}

func detailLine(e Entry) string {
	if e.Status == StatusFailed {
		return render.Truncate(e.Error, messageWidth+20)
	}
	return render.Truncate(e.Response, messageWidth+20)
}

func statusIcon(s Status) fmt.Stringer {
	switch s {
	case StatusAnswered:
		return render.SuccessIcon
	case StatusCancelled:
		return render.CancelIcon
	default:
		return render.ErrorIcon
	}
}
