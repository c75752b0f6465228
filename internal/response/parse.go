package response

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	cancelledMarker = "CANCELLED"
	cancelledText   = "User cancelled the operation."
	emptyAnswerText = "User did not provide any content."
)

// ParseError reports a popup response that could not be turned into content
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid popup response: %s: %v", e.Reason, e.Err)
	}
	return "invalid popup response: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse converts a raw popup response into tool content.
//
// Structured answers produce a single text block followed by one image block
// per attached image. Non-JSON responses are passed through as plain text.
func Parse(raw string) ([]mcp.Content, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == cancelledMarker {
		return []mcp.Content{mcp.NewTextContent(cancelledText)}, nil
	}
	if trimmed == "" {
		return nil, &ParseError{Reason: "empty response"}
	}

	var answer Answer
	if err := json.Unmarshal([]byte(trimmed), &answer); err != nil {
		// Older popups answer with bare text
		return []mcp.Content{mcp.NewTextContent(trimmed)}, nil
	}

	return fromAnswer(answer)
}

func fromAnswer(answer Answer) ([]mcp.Content, error) {
	var parts []string
	var images []mcp.Content

	if len(answer.SelectedOptions) > 0 {
		parts = append(parts, "Selected options: "+strings.Join(answer.SelectedOptions, ", "))
	}

	if answer.UserInput != nil {
		if input := strings.TrimSpace(*answer.UserInput); input != "" {
			parts = append(parts, input)
		}
	}

	for i, img := range answer.Images {
		if !strings.HasPrefix(img.MediaType, "image/") {
			return nil, &ParseError{Reason: fmt.Sprintf("image %d has unsupported media type %q", i+1, img.MediaType)}
		}
		decoded, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("image %d is not valid base64", i+1), Err: err}
		}

		parts = append(parts, describeImage(i+1, img, len(decoded)))
		images = append(images, mcp.NewImageContent(img.Data, img.MediaType))
	}

	text := emptyAnswerText
	if len(parts) > 0 {
		text = strings.Join(parts, "\n\n")
	}

	content := make([]mcp.Content, 0, len(images)+1)
	content = append(content, mcp.NewTextContent(text))
	return append(content, images...), nil
}

func describeImage(n int, img Image, size int) string {
	header := fmt.Sprintf("=== Image %d ===", n)
	if img.Filename != "" {
		header += " (" + img.Filename + ")"
	}
	return fmt.Sprintf("%s\nType: %s\nSize: %.1f KB", header, img.MediaType, float64(size)/1024)
}
