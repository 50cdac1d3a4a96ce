// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op names a user-visible operation. It reads after "Failed to".
type Op string

const (
	OpScan Op = "scan library"

	OpReportLoad Op = "load report"
	OpReportSave Op = "save report"

	OpRename    Op = "rename file"
	OpCreateDir Op = "create folder"
	OpWriteTags Op = "write tags"

	OpCacheOpen  Op = "open cache"
	OpCacheClean Op = "clean cache"
	OpCacheStats Op = "read cache stats"

	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format renders "Failed to <op>: <err>", or "" for a nil err.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith is Format with the subject of the operation, usually a path,
// quoted after op.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error carries a formatted message while keeping the cause unwrappable.
type Error struct {
	Op      Op
	Context string
	Err     error
}

func (e *Error) Error() string {
	return FormatWith(e.Op, e.Context, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *Error, or nil when err is nil.
func Wrap(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Context: context, Err: err}
}
