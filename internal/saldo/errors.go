package saldo

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every load failure matches exactly one of these via errors.Is,
// except cancellation: a canceled load wraps ctx.Err() and carries no kind.
var (
	ErrSourceUnavailable         = errors.New("source unavailable")
	ErrMalformedDocument         = errors.New("malformed document")
	ErrMissingRequiredField      = errors.New("missing required field")
	ErrDuplicateIdentity         = errors.New("duplicate identity")
	ErrDuplicatePrimaryReference = errors.New("duplicate primary reference")
	ErrIncompatiblePartOfSpeech  = errors.New("incompatible part of speech")
	ErrMissingPrimaryReference   = errors.New("missing primary reference")
	ErrUnresolvedReference       = errors.New("unresolved reference")
)

// LoadError describes why a lexicon could not be loaded.
// ID names the offending entry or lemgram, Target the reference that failed
// to resolve, Field the missing field. Line is 0 when the failure was not
// tied to an input position (source errors, linking).
type LoadError struct {
	Kind   error
	ID     string
	Target string
	Field  string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("saldo: ")
	b.WriteString(e.Kind.Error())

	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, ": %q", e.ID)
	}
	if e.Target != "" {
		fmt.Fprintf(&b, " references unknown %q", e.Target)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformedf(format string, args ...any) *LoadError {
	return &LoadError{Kind: ErrMalformedDocument, Err: fmt.Errorf(format, args...)}
}

func missingField(id, field string) *LoadError {
	return &LoadError{Kind: ErrMissingRequiredField, ID: id, Field: field}
}
