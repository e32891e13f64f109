package diag

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Span is a half-open byte range [Start, End) into the expression text.
type Span struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// SpanFromRange converts an HCL source range to a byte span.
func SpanFromRange(r hcl.Range) Span {
	start, end := r.Start.Byte, r.End.Byte
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return Span{Start: uint64(start), End: uint64(end)}
}

// Error is the engine's failure value.
type Error struct {
	Kind    Kind
	Message string
	// Span is nil when the failure has no meaningful source position.
	Span *Span
	Err  error
}

// Newf builds an Error without a span.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithSpan returns a copy of e positioned at s.
func (e *Error) WithSpan(s Span) *Error {
	cp := *e
	cp.Span = &s
	return &cp
}

// WithRange returns a copy of e positioned at an HCL source range.
func (e *Error) WithRange(r hcl.Range) *Error {
	return e.WithSpan(SpanFromRange(r))
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// Text is the message prefixed with the kind name, without position.
func (e *Error) Text() string {
	return e.Kind.String() + ": " + e.Message
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s at %d..%d", e.Text(), e.Span.Start, e.Span.End)
	}
	return e.Text()
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &diag.Error{Kind: diag.KindTypeCoercion}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// KindOf returns the kind carried by err, KindInternal for foreign errors
// and KindNone for nil.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// FromHCL converts the first error in diags into an Error of the given kind.
// It returns nil when diags carries no errors.
func FromHCL(kind Kind, diags hcl.Diagnostics) *Error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		e := &Error{Kind: kind, Message: msg, Err: diags}
		if d.Subject != nil {
			e = e.WithRange(*d.Subject)
		}
		return e
	}
	return nil
}
