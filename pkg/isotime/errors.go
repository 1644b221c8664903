package isotime

import (
	"errors"
	"fmt"
)

// ErrFormat is matched (errors.Is) by every parse failure in this package.
var ErrFormat = errors.New("isotime: invalid format")

// FormatError reports an input that does not match the expected grammar.
type FormatError struct {
	Kind  string // "duration" | "datetime"
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("isotime: invalid %s %q", e.Kind, e.Input)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

func durationError(in string) error { return &FormatError{Kind: "duration", Input: in} }
func datetimeError(in string) error { return &FormatError{Kind: "datetime", Input: in} }
