package stats

import "fmt"

// ParseError reports input that could not be read as tabular data.
type ParseError struct {
	Line int // 1-based source line, 0 when unknown
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
