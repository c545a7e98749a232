package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError carries the call site and slog attributes next to the message so that a single log line
// is enough to find where things went wrong.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// pc is the program counter of the caller that created the error.
	pc uintptr
	// attrs are added to the log event when the error is logged with SlogError.
	attrs []slog.Attr
	// cause is the wrapped error, nil for errors created with New.
	cause error
}

func callerPC() uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerPC and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above
	return pcs[0]
}

// New creates an AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	return &AnnotatedError{
		msg:   msg,
		pc:    callerPC(),
		attrs: attrs,
		cause: nil,
	}
}

// NewSentinel creates a plain error without call site, meant to be detected with Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with a message, the call site and attributes. Wrapping nil returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &AnnotatedError{
		msg:   msg,
		pc:    callerPC(),
		attrs: attrs,
		cause: err,
	}
}

// Error implements error interface.
func (e *AnnotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap exposes the wrapped error to Is and As.
func (e *AnnotatedError) Unwrap() error {
	return e.cause
}

// LogValue renders the source location followed by the annotated attributes.
func (e *AnnotatedError) LogValue() slog.Value {
	frames := runtime.CallersFrames([]uintptr{e.pc})
	source, _ := frames.Next()
	attrs := make([]slog.Attr, 0, len(e.attrs)+1)
	attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", source.File, source.Line)))
	attrs = append(attrs, e.attrs...)
	return slog.GroupValue(attrs...)
}

// SlogError returns an attribute that logs the full error message and, for annotated errors, the
// attributes collected along the wrap chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	attrs := []slog.Attr{slog.String("message", err.Error())}
	depth := 0
	for current := err; current != nil; current = errors.Unwrap(current) {
		annotated, ok := current.(*AnnotatedError) //nolint:errorlint // walking the chain one link at a time
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Attr{Key: fmt.Sprintf("frame%d", depth), Value: annotated.LogValue()})
		depth++
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
