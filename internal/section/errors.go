package section

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedPath      = errors.New("malformed section path")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrStructuredFormat   = errors.New("invalid structured document")
)

// MalformedPathError reports a path that cannot address a section.
type MalformedPathError struct {
	Path   string
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed path %q: %s", e.Path, e.Reason)
}

func (e *MalformedPathError) Unwrap() error {
	return ErrMalformedPath
}

// UnsupportedContentTypeError is returned by SetDefault when a value matches
// none of the recognized content shapes.
type UnsupportedContentTypeError struct {
	Value  any
	Reason string
}

func (e *UnsupportedContentTypeError) Error() string {
	msg := fmt.Sprintf("unsupported content type %T", e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnsupportedContentTypeError) Unwrap() error {
	return ErrUnsupportedContent
}

// Issue is a single problem found in a structured document.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// StructuredFormatError is returned when a structured document cannot be
// turned back into a tree. Location is a slash path into the structured
// value, e.g. "/children/0/node/content/2".
type StructuredFormatError struct {
	Location string
	Reason   string
	Issues   []Issue
}

func (e *StructuredFormatError) Error() string {
	if len(e.Issues) > 0 {
		parts := make([]string, 0, len(e.Issues))
		for _, issue := range e.Issues {
			loc := issue.Location
			if loc == "" {
				loc = "/"
			}
			parts = append(parts, loc+": "+issue.Message)
		}
		return "invalid structured document: " + strings.Join(parts, "; ")
	}
	loc := e.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("invalid structured document at %s: %s", loc, e.Reason)
}

func (e *StructuredFormatError) Unwrap() error {
	return ErrStructuredFormat
}

func formatErr(location, format string, args ...any) *StructuredFormatError {
	return &StructuredFormatError{Location: location, Reason: fmt.Sprintf(format, args...)}
}
