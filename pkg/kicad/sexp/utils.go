package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// FindNode searches for a direct child list with the given key (first symbol)
// Example: FindNode(node, "at") finds (at 100 50) in a list
func FindNode(l *kicadsexp.List, key string) (*kicadsexp.List, bool) {
	if l == nil {
		return nil, false
	}
	for _, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok && sub.Name() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAllNodes finds all direct child lists with the given key
func FindAllNodes(l *kicadsexp.List, key string) []*kicadsexp.List {
	var results []*kicadsexp.List
	if l == nil {
		return results
	}
	for _, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok && sub.Name() == key {
			results = append(results, sub)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(l *kicadsexp.List) []kicadsexp.Sexp {
	if l == nil || l.Len() <= 1 {
		return []kicadsexp.Sexp{}
	}
	return l.Items()[1:]
}

// Walk calls fn for l and every list nested inside it, depth first.
// Returning false from fn skips the children of that list.
func Walk(l *kicadsexp.List, fn func(*kicadsexp.List) bool) {
	if l == nil || !fn(l) {
		return
	}
	for _, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok {
			Walk(sub, fn)
		}
	}
}

// Typed value extraction helpers

// GetString extracts an atom value at the given index in a list.
// Index 0 is the key, 1 is first value, etc. Quoted and bare atoms are both
// accepted.
func GetString(l *kicadsexp.List, index int) (string, error) {
	if index < 0 || index >= l.Len() {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, l.Len())
	}
	item := l.Get(index)
	if v, ok := kicadsexp.AtomValue(item); ok {
		return v, nil
	}
	return "", fmt.Errorf("expected atom at index %d, got %T", index, item)
}

// GetFloat extracts a float64 value at the given index
func GetFloat(l *kicadsexp.List, index int) (float64, error) {
	str, err := GetString(l, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(l *kicadsexp.List, index int) (int, error) {
	str, err := GetString(l, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// GetCoord extracts a millimetre value at the given index as a Coord
func GetCoord(l *kicadsexp.List, index int) (Coord, error) {
	str, err := GetString(l, index)
	if err != nil {
		return 0, err
	}
	return ParseCoord(str)
}

// GetPoint extracts X,Y from a (keyword X Y ...) node such as
// (start X Y), (at X Y angle) or (xy X Y)
func GetPoint(l *kicadsexp.List) (Point, error) {
	x, err := GetCoord(l, 1)
	if err != nil {
		return Point{}, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err := GetCoord(l, 2)
	if err != nil {
		return Point{}, fmt.Errorf("failed to parse Y: %w", err)
	}
	return Point{X: x, Y: y}, nil
}

// SetPoint overwrites X,Y of a (keyword X Y ...) node, keeping any trailing
// values such as the rotation of an (at ...) node
func SetPoint(l *kicadsexp.List, p Point) error {
	if l.Len() < 3 {
		return fmt.Errorf("(%s) has no X Y pair", l.Name())
	}
	l.Set(1, kicadsexp.Symbol(FormatCoord(p.X)))
	l.Set(2, kicadsexp.Symbol(FormatCoord(p.Y)))
	return nil
}

// TranslatePoint moves a (keyword X Y ...) node by d
func TranslatePoint(l *kicadsexp.List, d Point) error {
	p, err := GetPoint(l)
	if err != nil {
		return fmt.Errorf("(%s): %w", l.Name(), err)
	}
	return SetPoint(l, p.Add(d))
}

// PointNode builds (key X Y)
func PointNode(key string, p Point) *kicadsexp.List {
	return kicadsexp.NewNode(key,
		kicadsexp.Symbol(FormatCoord(p.X)),
		kicadsexp.Symbol(FormatCoord(p.Y)))
}

// FormatAngle formats an angle in degrees the way KiCad writes it
func FormatAngle(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64)
}

// SetChild replaces the first direct child named key with (key args...),
// or appends it if there is none
func SetChild(l *kicadsexp.List, key string, args ...kicadsexp.Sexp) *kicadsexp.List {
	node := kicadsexp.NewNode(key, args...)
	for i, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok && sub.Name() == key {
			l.Set(i, node)
			return node
		}
	}
	l.Append(node)
	return node
}

// RemoveChildren drops every direct child named key and reports how many
// were removed
func RemoveChildren(l *kicadsexp.List, key string) int {
	removed := 0
	for i := l.Len() - 1; i >= 0; i-- {
		if sub, ok := l.Get(i).(*kicadsexp.List); ok && sub.Name() == key {
			l.RemoveAt(i)
			removed++
		}
	}
	return removed
}
