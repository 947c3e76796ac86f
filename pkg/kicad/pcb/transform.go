package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
	"github.com/google/uuid"
)

// idNamespace seeds the name-based UUIDs given to copied and generated items,
// which keeps repeated runs on the same input byte-identical.
var idNamespace = uuid.MustParse("3b0f6a4e-8c1d-5e7a-9f2b-6d4c8a1e0b57")

// DeriveID returns a stable UUID for the item derived from parent under salt
func DeriveID(parent, salt string) string {
	return uuid.NewSHA1(idNamespace, []byte(parent+"/"+salt)).String()
}

// pointKeys are the child nodes that hold absolute coordinates on
// board-level primitives
var pointKeys = map[string]bool{
	"start":  true,
	"end":    true,
	"mid":    true,
	"center": true,
	"at":     true,
}

// Move translates the item by d.
//
// Pads and footprint graphics are stored relative to the footprint anchor,
// so a footprint moves its anchor and the zones it owns, which are stored in
// board coordinates.
func (it *Item) Move(d Point) error {
	switch it.Type() {
	case "footprint":
		at, ok := sexp.FindNode(it.node, "at")
		if !ok {
			return fmt.Errorf("%w: footprint without (at)", ErrUnsupported)
		}
		if err := sexp.TranslatePoint(at, d); err != nil {
			return err
		}
		return moveFootprintContent(it.node, d)
	case "zone":
		return moveZone(it.node, d)
	}
	if it.kind == KindUnknown {
		return fmt.Errorf("%w: cannot move (%s)", ErrUnsupported, it.Type())
	}
	return movePrimitive(it.node, d)
}

// moveFootprintContent moves the parts of a footprint that do not follow its
// anchor: keepout and copper zones. Cached text outlines are dropped and
// rebuilt by pcbnew on load.
func moveFootprintContent(node *kicadsexp.List, d Point) error {
	for _, zone := range sexp.FindAllNodes(node, "zone") {
		if err := moveZone(zone, d); err != nil {
			return err
		}
	}
	sexp.Walk(node, func(l *kicadsexp.List) bool {
		sexp.RemoveChildren(l, "render_cache")
		return true
	})
	return nil
}

func movePrimitive(node *kicadsexp.List, d Point) error {
	moved := 0
	for _, elem := range node.Items() {
		child, ok := elem.(*kicadsexp.List)
		if !ok {
			continue
		}
		switch {
		case pointKeys[child.Name()]:
			if err := sexp.TranslatePoint(child, d); err != nil {
				return err
			}
			moved++
		case child.Name() == "pts":
			n, err := movePts(child, d)
			if err != nil {
				return err
			}
			moved += n
		case child.Name() == "gr_text":
			// the measurement text of a dimension
			if err := movePrimitive(child, d); err != nil {
				return err
			}
			moved++
		case child.Name() == "render_cache":
			if err := moveAllPts(child, d); err != nil {
				return err
			}
		}
	}
	if moved == 0 {
		return fmt.Errorf("%w: (%s) has no coordinates", ErrUnsupported, node.Name())
	}
	return nil
}

// movePts translates (pts (xy ..) (arc (start ..) (mid ..) (end ..)) ...)
func movePts(pts *kicadsexp.List, d Point) (int, error) {
	moved := 0
	for _, elem := range pts.Items() {
		child, ok := elem.(*kicadsexp.List)
		if !ok {
			continue
		}
		switch child.Name() {
		case "xy":
			if err := sexp.TranslatePoint(child, d); err != nil {
				return moved, err
			}
			moved++
		case "arc":
			for _, key := range []string{"start", "mid", "end"} {
				if p, ok := sexp.FindNode(child, key); ok {
					if err := sexp.TranslatePoint(p, d); err != nil {
						return moved, err
					}
					moved++
				}
			}
		}
	}
	return moved, nil
}

// moveZone translates the outline and every filled polygon of a zone
func moveZone(node *kicadsexp.List, d Point) error {
	moved, err := movePtsTree(node, d)
	if err != nil {
		return err
	}
	if moved == 0 {
		return fmt.Errorf("%w: zone has no outline", ErrUnsupported)
	}
	return nil
}

// moveAllPts translates every (pts ...) list nested in node
func moveAllPts(node *kicadsexp.List, d Point) error {
	_, err := movePtsTree(node, d)
	return err
}

func movePtsTree(node *kicadsexp.List, d Point) (int, error) {
	var err error
	moved := 0
	sexp.Walk(node, func(l *kicadsexp.List) bool {
		if err != nil {
			return false
		}
		if l.Name() != "pts" {
			return true
		}
		var n int
		n, err = movePts(l, d)
		moved += n
		return false
	})
	return moved, err
}

// Duplicate returns a deep copy of the item that is not yet on the board.
// Every uuid/tstamp inside the copy is replaced with one derived from the
// original and salt, so copies never share identifiers with their source.
func (it *Item) Duplicate(salt string) (*Item, error) {
	if it.kind == KindUnknown {
		return nil, fmt.Errorf("%w: cannot duplicate (%s)", ErrUnsupported, it.Type())
	}
	clone := it.node.Clone()
	sexp.Walk(clone, func(l *kicadsexp.List) bool {
		if l.Name() != "uuid" && l.Name() != "tstamp" {
			return true
		}
		old := l.Get(1)
		oldID, ok := kicadsexp.AtomValue(old)
		if !ok {
			return false
		}
		newID := DeriveID(oldID, salt)
		if _, quoted := old.(kicadsexp.Quoted); quoted {
			l.Set(1, kicadsexp.Quoted(newID))
		} else {
			l.Set(1, kicadsexp.Symbol(newID))
		}
		return false
	})
	return &Item{node: clone, kind: it.kind, board: it.board}, nil
}
