package kicadsexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError reports malformed input and the line it was found on
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Decoder reads s-expressions one top-level value at a time.
// Bare atoms decode to Symbol and double-quoted atoms to Quoted, so the
// value can be written back with the same quoting.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder returns a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), line: 1}
}

// Decode returns the next top-level value. It returns io.EOF once the input
// holds nothing but whitespace.
func (d *Decoder) Decode() (Sexp, error) {
	ch, err := d.skipSpace()
	if err != nil {
		return nil, err
	}
	return d.value(ch)
}

// Line returns the 1-based line the decoder has reached
func (d *Decoder) Line() int {
	return d.line
}

// value decodes the value starting with the already consumed rune ch
func (d *Decoder) value(ch rune) (Sexp, error) {
	switch ch {
	case '(':
		return d.list()
	case ')':
		return nil, &SyntaxError{Line: d.line, Msg: "unexpected ')'"}
	case '"':
		return d.quoted()
	}
	return d.symbol(ch)
}

func (d *Decoder) list() (Sexp, error) {
	start := d.line
	l := &List{}
	for {
		ch, err := d.skipSpace()
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Line: start, Msg: "list is never closed"}
		}
		if err != nil {
			return nil, err
		}
		if ch == ')' {
			return l, nil
		}
		elem, err := d.value(ch)
		if err != nil {
			return nil, err
		}
		l.elements = append(l.elements, elem)
	}
}

// unescape maps the letter after a backslash to the byte it stands for.
// Any other escaped rune stands for itself.
var unescape = map[rune]rune{
	'n': '\n',
	'r': '\r',
	't': '\t',
}

func (d *Decoder) quoted() (Sexp, error) {
	start := d.line
	unterminated := &SyntaxError{Line: start, Msg: "string is never closed"}

	var sb strings.Builder
	for {
		ch, err := d.next()
		if errors.Is(err, io.EOF) {
			return nil, unterminated
		}
		if err != nil {
			return nil, err
		}
		switch ch {
		case '"':
			return Quoted(sb.String()), nil
		case '\\':
			esc, err := d.next()
			if err != nil {
				return nil, unterminated
			}
			if r, ok := unescape[esc]; ok {
				esc = r
			}
			sb.WriteRune(esc)
		default:
			sb.WriteRune(ch)
		}
	}
}

func (d *Decoder) symbol(first rune) (Sexp, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch, err := d.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isDelimiter(ch) {
			d.back(ch)
			break
		}
		sb.WriteRune(ch)
	}
	return Symbol(sb.String()), nil
}

// skipSpace consumes whitespace and returns the first other rune
func (d *Decoder) skipSpace() (rune, error) {
	for {
		ch, err := d.next()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(ch) {
			return ch, nil
		}
	}
}

func (d *Decoder) next() (rune, error) {
	ch, _, err := d.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch == '\n' {
		d.line++
	}
	return ch, nil
}

// back pushes ch, the rune last returned by next, back onto the input
func (d *Decoder) back(ch rune) {
	_ = d.r.UnreadRune()
	if ch == '\n' {
		d.line--
	}
}

func isDelimiter(ch rune) bool {
	return ch == '(' || ch == ')' || ch == '"' || unicode.IsSpace(ch)
}

// Parse decodes every top-level value in r
func Parse(r io.Reader) ([]Sexp, error) {
	d := NewDecoder(r)
	var out []Sexp
	for {
		s, err := d.Decode()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

// ParseString decodes every top-level value in s
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
