package filter

import "fmt"

// ParseError reports a syntax error at a byte offset into the original
// filter string, for both the standard and simple grammars.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter: %s at offset %d in %q", e.Msg, e.Offset, e.Input)
}

func parseErr(input string, offset int, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
