package interaction

import "fmt"

// ErrorKind identifies which step of an interaction failed
type ErrorKind int

const (
	// KindPopup means the popup could not be shown or answered.
	KindPopup ErrorKind = iota + 1
	// KindParse means the popup answered but its response was unusable.
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindPopup:
		return "popup"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// ToolError is the error returned by Tool.Zhi.
//
// Popup failures are flattened to their description. Parse failures keep the
// parser's error in Err and report its message unchanged.
type ToolError struct {
	Kind        ErrorKind
	Description string
	Err         error
}

// NewPopupError builds the error reported when the popup itself fails
func NewPopupError(description string) *ToolError {
	return &ToolError{Kind: KindPopup, Description: description}
}

func (e *ToolError) Error() string {
	if e.Kind == KindParse && e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("popup creation failed: %s", e.Description)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
