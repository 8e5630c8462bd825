// Package xmlreader turns an XML byte stream into element open/close
// callbacks on a ContentHandler.
//
// Self-closing elements are reported as an open immediately followed by a
// close. Text, comments, processing instructions and directives are consumed
// but not forwarded.
package xmlreader

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode"
)

// ErrMalformed reports input that is not well-formed XML.
var ErrMalformed = errors.New("malformed xml")

var errUnsupportedCharset = errors.New("only UTF-8 input is supported")

const defaultCheckEvery = 4096

// ContentHandler receives structural events in document order.
// Returning an error stops the parse.
type ContentHandler interface {
	StartElement(name string, attrs Attributes) error
	EndElement(name string) error
}

// Attributes maps attribute local names to values. Repeated names on one
// element keep the last value.
type Attributes map[string]string

// Get returns the attribute value and whether it was present.
func (a Attributes) Get(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// Error carries the input line on which parsing stopped.
type Error struct {
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Stats counts what the reader saw.
type Stats struct {
	Elements int
	Skipped  int
	Lines    int
}

// Reader drives a ContentHandler from an io.Reader.
type Reader struct {
	log        *slog.Logger
	checkEvery int
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for skipped-event tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCancelCheckEvery sets how many tokens are read between context checks.
func WithCancelCheckEvery(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.checkEvery = n
		}
	}
}

// New creates a Reader.
func New(opts ...Option) *Reader {
	r := &Reader{
		log:        slog.Default(),
		checkEvery: defaultCheckEvery,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Parse reads in until end of stream, forwarding element events to h.
func (r *Reader) Parse(ctx context.Context, in io.Reader, h ContentHandler) (Stats, error) {
	var stats Stats

	dec := xml.NewDecoder(in)
	dec.Strict = true

	var charset string
	dec.CharsetReader = func(label string, _ io.Reader) (io.Reader, error) {
		charset = label
		return nil, errUnsupportedCharset
	}

	depth := 0
	sawRoot, rootClosed := false, false
	for n := 1; ; n++ {
		if n%r.checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				line, _ := dec.InputPos()
				return stats, &Error{Line: line, Err: err}
			}
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if charset != "" {
				line, _ := dec.InputPos()
				return stats, &Error{Line: line, Err: fmt.Errorf("%w: unsupported encoding %q", ErrMalformed, charset)}
			}
			return stats, tokenError(dec, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				line, _ := dec.InputPos()
				return stats, &Error{Line: line, Err: fmt.Errorf("%w: element %s after document end", ErrMalformed, t.Name.Local)}
			}
			sawRoot = true
			depth++
			stats.Elements++
			if err := h.StartElement(t.Name.Local, toAttributes(t.Attr)); err != nil {
				return stats, positioned(dec, err)
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootClosed = true
			}
			if err := h.EndElement(t.Name.Local); err != nil {
				return stats, positioned(dec, err)
			}
		case xml.CharData:
			// text inside the root carries no lexicon data
			if depth == 0 && !blankOutsideRoot(t) {
				line, _ := dec.InputPos()
				return stats, &Error{Line: line, Err: fmt.Errorf("%w: character data outside root element", ErrMalformed)}
			}
		case xml.Comment, xml.ProcInst, xml.Directive:
			stats.Skipped++
			r.log.Debug("xml event skipped", slog.String("kind", fmt.Sprintf("%T", t)))
		}
	}

	stats.Lines, _ = dec.InputPos()

	if !sawRoot {
		return stats, &Error{Line: stats.Lines, Err: fmt.Errorf("%w: no root element", ErrMalformed)}
	}

	return stats, nil
}

func blankOutsideRoot(data []byte) bool {
	for _, r := range string(data) {
		if r != '\uFEFF' && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func toAttributes(attrs []xml.Attr) Attributes {
	out := make(Attributes, len(attrs))
	for _, a := range attrs {
		out[a.Name.Local] = a.Value
	}
	return out
}

func tokenError(dec *xml.Decoder, err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return &Error{Line: syn.Line, Err: fmt.Errorf("%w: %s", ErrMalformed, syn.Msg)}
	}
	// Failures of the underlying stream, e.g. a truncated gzip member.
	line, _ := dec.InputPos()
	return &Error{Line: line, Err: fmt.Errorf("read: %w", err)}
}

func positioned(dec *xml.Decoder, err error) error {
	line, _ := dec.InputPos()
	return &Error{Line: line, Err: err}
}
