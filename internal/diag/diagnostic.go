package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic is the boundary form of a failure. A zero Diagnostic means
// "no error".
type Diagnostic struct {
	Message string `json:"message,omitempty"`
	IsError bool   `json:"is_error"`
	Span    Span   `json:"span"`
	Kind    Kind   `json:"kind,omitempty"`
}

// FromError flattens any error into a Diagnostic. nil maps to the zero
// Diagnostic; errors that are not *Error become KindInternal.
func FromError(err error) Diagnostic {
	if err == nil {
		return Diagnostic{}
	}
	var de *Error
	if !errors.As(err, &de) {
		return Diagnostic{
			Message: KindInternal.String() + ": " + err.Error(),
			IsError: true,
			Kind:    KindInternal,
		}
	}
	d := Diagnostic{
		Message: de.Text(),
		IsError: true,
		Kind:    de.Kind,
	}
	if de.Span != nil {
		d.Span = *de.Span
		if d.Span.End < d.Span.Start {
			d.Span.End = d.Span.Start
		}
	}
	return d
}

// FromPanic converts a recovered panic value into a Diagnostic.
func FromPanic(r any) Diagnostic {
	return FromError(Newf(KindInternal, "recovered from panic: %v", r))
}

// Err turns the diagnostic back into an error, or nil if it is not an error.
func (d Diagnostic) Err() error {
	if !d.IsError {
		return nil
	}
	e := &Error{Kind: d.Kind, Message: d.Message}
	if msg, ok := strings.CutPrefix(e.Message, d.Kind.String()+": "); ok {
		e.Message = msg
	}
	if d.Span != (Span{}) {
		s := d.Span
		e.Span = &s
	}
	return e
}

// String renders the diagnostic for terminals.
func (d Diagnostic) String() string {
	if !d.IsError {
		return "ok"
	}
	if d.Span == (Span{}) {
		return d.Message
	}
	return fmt.Sprintf("%s at %d..%d", d.Message, d.Span.Start, d.Span.End)
}
