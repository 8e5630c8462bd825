package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Reader yields sentences from a tab-separated corpus stream.
type Reader struct {
	sc   *bufio.Scanner
	line int
	done bool
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// ReadSentence returns the next sentence, or io.EOF once the stream is
// exhausted. A trailing sentence without a closing blank line is returned.
func (r *Reader) ReadSentence() ([]LemmaToken, error) {
	if r.done {
		return nil, io.EOF
	}

	var out []LemmaToken
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			if len(out) == 0 {
				continue
			}
			return out, nil
		}
		tok, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		out = append(out, tok)
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	r.done = true
	if len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// ReadSentences returns up to n sentences. An empty result means the stream
// is exhausted.
func (r *Reader) ReadSentences(n int) ([][]LemmaToken, error) {
	if n < 1 {
		n = 1
	}
	var out [][]LemmaToken
	for len(out) < n {
		s, err := r.ReadSentence()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}
