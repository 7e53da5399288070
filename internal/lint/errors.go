package lint

import (
	"fmt"

	"awaitlint/internal/source"
)

// InternalError reports a malformed tree. It indicates a bug in the front
// end rather than an issue in the user's code and is never turned into a
// diagnostic.
type InternalError struct {
	Rule string
	Span source.Span
	Msg  string
}

func (e *InternalError) Error() string {
	msg := []byte("Internal Error: ")
	if e.Rule != "" {
		msg = fmt.Appendf(msg, "%s: ", e.Rule)
	}
	msg = fmt.Appendf(msg, "%s at %s", e.Msg, e.Span)
	return string(msg)
}

func internalErrorf(rule string, sp source.Span, format string, args ...any) *InternalError {
	return &InternalError{Rule: rule, Span: sp, Msg: fmt.Sprintf(format, args...)}
}
