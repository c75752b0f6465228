// Package response turns the raw text a popup hands back into MCP content.
package response

import "time"

// Answer is the structured response written by a popup
type Answer struct {
	UserInput       *string  `json:"user_input"`
	SelectedOptions []string `json:"selected_options"`
	Images          []Image  `json:"images"`
	Metadata        Metadata `json:"metadata"`
}

// Image is an image the user attached to an answer. Data is base64 encoded.
type Image struct {
	Data      string `json:"data"`
	MediaType string `json:"media_type"`
	Filename  string `json:"filename,omitempty"`
}

// Metadata describes where and when an answer was produced
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Source    string    `json:"source"`
}
