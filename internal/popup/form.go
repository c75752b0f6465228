package popup

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/martinemde/zhi/internal/color"
	"github.com/martinemde/zhi/internal/render"
	"github.com/martinemde/zhi/internal/response"
)

// AnswerSource identifies answers produced by the terminal form
const AnswerSource = "zhi-terminal"

// Form shows popups as interactive terminal forms
type Form struct {
	out      io.Writer
	in       io.Reader
	renderer *glamour.TermRenderer
	readFile func(string) ([]byte, error)
	now      func() time.Time
}

// NewForm creates a terminal form writing to out with colors per mode
func NewForm(out io.Writer, mode color.Mode) *Form {
	return &Form{
		out:      out,
		renderer: render.NewMarkdownRenderer(mode, 0),
		readFile: os.ReadFile,
		now:      time.Now,
	}
}

// WithInput makes the form read keystrokes from r instead of the terminal
func (f *Form) WithInput(r io.Reader) *Form {
	f.in = r
	return f
}

// Prompt shows req and returns the JSON encoded answer, or Cancelled when the
// user aborts the form.
func (f *Form) Prompt(ctx context.Context, req *Request) (string, error) {
	_, _ = fmt.Fprintln(f.out, Header(req))
	_, _ = fmt.Fprintln(f.out, render.MessageBox.Render(f.renderMessage(req)))

	var (
		selected   []string
		input      string
		imagePaths string
	)

	var fields []huh.Field
	if len(req.PredefinedOptions) > 0 {
		fields = append(fields,
			huh.NewMultiSelect[string]().
				Title("Options").
				Options(huh.NewOptions(req.PredefinedOptions...)...).
				Value(&selected),
		)
	}
	fields = append(fields,
		huh.NewText().
			Title("Reply").
			Description("Optional free text").
			Value(&input),
		huh.NewInput().
			Title("Images").
			Description("Comma-separated image paths (optional)").
			Validate(func(s string) error {
				_, err := loadImages(splitPaths(s), f.readFile)
				return err
			}).
			Value(&imagePaths),
	)

	form := huh.NewForm(huh.NewGroup(fields...)).WithOutput(f.out)
	if f.in != nil {
		form = form.WithInput(f.in)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Cancelled, nil
		}
		return "", fmt.Errorf("popup form failed: %w", err)
	}

	images, err := loadImages(splitPaths(imagePaths), f.readFile)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(BuildAnswer(req.ID, selected, input, images, f.now()))
	if err != nil {
		return "", fmt.Errorf("failed to encode answer: %w", err)
	}
	return string(data), nil
}

func (f *Form) renderMessage(req *Request) string {
	if req.IsMarkdown {
		return render.Markdown(f.renderer, req.Message)
	}
	return req.Message
}

// Header describes who is asking, e.g. "claude-code asks (3f2a9c1b)"
func Header(req *Request) string {
	who := "Agent"
	if req.ClientName != nil && *req.ClientName != "" {
		who = *req.ClientName
	}

	id := req.ID
	if len(id) > 8 {
		id = id[:8]
	}

	line := render.TitleStyle.Render(who + " asks")
	if id != "" {
		line += " " + render.DimStyle.Render("("+id+")")
	}
	return line
}

// BuildAnswer assembles the structured answer for a submitted form.
// Blank free text is recorded as no input.
func BuildAnswer(requestID string, selected []string, input string, images []response.Image, now time.Time) response.Answer {
	var userInput *string
	if trimmed := strings.TrimSpace(input); trimmed != "" {
		userInput = &trimmed
	}
	if selected == nil {
		selected = []string{}
	}
	if images == nil {
		images = []response.Image{}
	}

	return response.Answer{
		UserInput:       userInput,
		SelectedOptions: selected,
		Images:          images,
		Metadata: response.Metadata{
			Timestamp: now.UTC(),
			RequestID: requestID,
			Source:    AnswerSource,
		},
	}
}

func splitPaths(s string) []string {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func loadImages(paths []string, readFile func(string) ([]byte, error)) ([]response.Image, error) {
	images := make([]response.Image, 0, len(paths))
	for _, path := range paths {
		data, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}

		mediaType := http.DetectContentType(data)
		if !strings.HasPrefix(mediaType, "image/") {
			return nil, fmt.Errorf("%s is not an image (%s)", path, mediaType)
		}

		images = append(images, response.Image{
			Data:      base64.StdEncoding.EncodeToString(data),
			MediaType: mediaType,
			Filename:  filepath.Base(path),
		})
	}
	return images, nil
}
