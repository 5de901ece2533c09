package extract

import "errors"

// ErrFormatUnrecognized means no extraction strategy matched the document.
var ErrFormatUnrecognized = errors.New("document format unrecognized")

// FormatError reports a document that no strategy could interpret. It
// carries a bounded summary of the input for debugging.
type FormatError struct {
	Diagnostics string
}

func (e *FormatError) Error() string {
	return "unable to find { head, shape[] } in document source; " + e.Diagnostics
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormatUnrecognized
}
