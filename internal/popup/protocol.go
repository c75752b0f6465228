// Package popup carries popup requests from the MCP server process to the
// process that owns a terminal and can show them to a human.
package popup

// SocketEnvVar is the environment variable name for the socket path
const SocketEnvVar = "ZHI_POPUP_SOCK"

// Cancelled is the raw response produced when the user dismisses a popup.
const Cancelled = "CANCELLED"

// Request is a single popup to show to the user.
//
// PredefinedOptions is nil when the caller supplied no options; it is never
// an empty non-nil slice. WorkspaceName is reserved and currently always nil.
type Request struct {
	ID                string   `json:"id"`
	Message           string   `json:"message"`
	PredefinedOptions []string `json:"predefined_options,omitempty"`
	IsMarkdown        bool     `json:"is_markdown"`
	ClientName        *string  `json:"client_name,omitempty"`
	WorkspaceName     *string  `json:"workspace_name,omitempty"`
}

// Envelope is a request sent from the MCP server to the popup host
type Envelope struct {
	Type  string   `json:"type"` // "popup"
	Popup *Request `json:"popup,omitempty"`
}

// Reply is the popup host's answer to an Envelope
type Reply struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"` // raw popup response
	Error    string `json:"error,omitempty"`
}

const envelopeTypePopup = "popup"
