// Package kicadsexp provides a lightweight streaming S-expression parser and
// writer for KiCad board files. Unlike general-purpose sexp libraries, the
// tree it produces is mutable and keeps the distinction between bare symbols
// and quoted strings, so a board can be read, edited and written back without
// losing information.
package kicadsexp

import "strings"

// Sexp represents an S-expression node.
// It can be either a leaf (atom) or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// Head returns the first element of a list (the atom itself for atoms)
	Head() Sexp

	// Tail returns the rest of the list after the first element (nil for atoms)
	Tail() Sexp

	// String returns the string representation
	String() string
}

// Symbol represents a bare atom (keyword, number, identifier)
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// Quoted represents an atom that was written between double quotes.
// The value is stored unescaped.
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) LeafCount() int { return 1 }
func (q Quoted) Head() Sexp     { return q }
func (q Quoted) Tail() Sexp     { return nil }
func (q Quoted) String() string { return quote(string(q)) }

// AtomValue returns the text of a Symbol or Quoted atom.
func AtomValue(s Sexp) (string, bool) {
	switch a := s.(type) {
	case Symbol:
		return string(a), true
	case Quoted:
		return string(a), true
	}
	return "", false
}

// List represents a list of S-expressions
type List struct {
	elements []Sexp
}

// NewList creates a list from the given elements
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

// NewNode creates a list whose first element is the symbol name,
// e.g. NewNode("layer", Quoted("F.Cu")) is (layer "F.Cu").
func NewNode(name string, args ...Sexp) *List {
	elements := make([]Sexp, 0, len(args)+1)
	elements = append(elements, Symbol(name))
	elements = append(elements, args...)
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Name returns the leading symbol of the list, or "" if there is none
func (l *List) Name() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Items returns the elements of the list. The returned slice must not be
// modified; use Set, Append, Insert and RemoveAt instead.
func (l *List) Items() []Sexp {
	return l.elements
}

// Set replaces the element at index
func (l *List) Set(index int, s Sexp) {
	if index < 0 || index >= len(l.elements) {
		return
	}
	l.elements[index] = s
}

// Append adds elements to the end of the list
func (l *List) Append(s ...Sexp) {
	l.elements = append(l.elements, s...)
}

// Insert places s at index, shifting later elements right.
// An index past the end appends.
func (l *List) Insert(index int, s ...Sexp) {
	if index < 0 {
		index = 0
	}
	if index >= len(l.elements) {
		l.elements = append(l.elements, s...)
		return
	}
	grown := make([]Sexp, 0, len(l.elements)+len(s))
	grown = append(grown, l.elements[:index]...)
	grown = append(grown, s...)
	grown = append(grown, l.elements[index:]...)
	l.elements = grown
}

// RemoveAt deletes the element at index
func (l *List) RemoveAt(index int) {
	if index < 0 || index >= len(l.elements) {
		return
	}
	l.elements = append(l.elements[:index], l.elements[index+1:]...)
}

// IndexOf returns the position of the exact node s (pointer identity for
// lists), or -1.
func (l *List) IndexOf(s Sexp) int {
	for i, elem := range l.elements {
		if elem == s {
			return i
		}
	}
	return -1
}

// RemoveFunc deletes every element for which fn returns true and reports how
// many were removed
func (l *List) RemoveFunc(fn func(Sexp) bool) int {
	kept := l.elements[:0]
	removed := 0
	for _, elem := range l.elements {
		if fn(elem) {
			removed++
			continue
		}
		kept = append(kept, elem)
	}
	for i := len(kept); i < len(l.elements); i++ {
		l.elements[i] = nil
	}
	l.elements = kept
	return removed
}

// Clone returns a deep copy of the list
func (l *List) Clone() *List {
	out := &List{elements: make([]Sexp, len(l.elements))}
	for i, elem := range l.elements {
		if sub, ok := elem.(*List); ok {
			out.elements[i] = sub.Clone()
		} else {
			out.elements[i] = elem
		}
	}
	return out
}
