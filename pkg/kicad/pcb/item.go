package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
)

// Item is a top-level board object: a track, drawing, footprint or zone.
type Item struct {
	node  *kicadsexp.List
	kind  Kind
	board *Board
}

// NewItem wraps a node built by hand. The family is derived from its keyword.
func NewItem(node *kicadsexp.List) *Item {
	return &Item{node: node, kind: kindOf(node.Name())}
}

// Node returns the underlying s-expression
func (it *Item) Node() *kicadsexp.List { return it.node }

// Type returns the item keyword (segment, gr_line, footprint, zone, ...)
func (it *Item) Type() string { return it.node.Name() }

// Kind returns the item family
func (it *Item) Kind() Kind { return it.kind }

// ID returns the item's uuid or tstamp, or "" if it has none
func (it *Item) ID() string {
	for _, key := range []string{"uuid", "tstamp"} {
		if node, ok := sexp.FindNode(it.node, key); ok {
			if id, err := sexp.GetString(node, 1); err == nil {
				return id
			}
		}
	}
	return ""
}

// Layer returns the item's layer. Items spanning several layers (vias,
// multi-layer zones) report the first one.
func (it *Item) Layer() string {
	layers := it.Layers()
	if len(layers) == 0 {
		return ""
	}
	return layers[0]
}

// Layers returns every layer the item is on
func (it *Item) Layers() []string {
	if node, ok := sexp.FindNode(it.node, "layer"); ok {
		if name, err := sexp.GetString(node, 1); err == nil {
			return []string{name}
		}
	}
	if node, ok := sexp.FindNode(it.node, "layers"); ok {
		var names []string
		for _, elem := range sexp.GetListItems(node) {
			if name, ok := kicadsexp.AtomValue(elem); ok {
				names = append(names, name)
			}
		}
		return names
	}
	return nil
}

// IsOnLayer checks if the item is on the named layer
func (it *Item) IsOnLayer(name string) bool {
	for _, layer := range it.Layers() {
		if layer == name {
			return true
		}
	}
	return false
}

// SetLayer moves the item to a single layer
func (it *Item) SetLayer(name string) {
	if sexp.RemoveChildren(it.node, "layers") > 0 {
		it.node.Insert(1, kicadsexp.NewNode("layer", kicadsexp.Quoted(name)))
		return
	}
	sexp.SetChild(it.node, "layer", kicadsexp.Quoted(name))
}

// Net returns the net the item is connected to
func (it *Item) Net() (Net, bool) {
	node, ok := sexp.FindNode(it.node, "net")
	if !ok {
		return Net{}, false
	}
	num, err := sexp.GetInt(node, 1)
	if err != nil {
		return Net{}, false
	}
	net := Net{Number: num}
	if nameNode, ok := sexp.FindNode(it.node, "net_name"); ok {
		net.Name, _ = sexp.GetString(nameNode, 1)
	} else if it.board != nil {
		if known, ok := it.board.netMap.GetByNumber(num); ok {
			net.Name = known.Name
		}
	}
	return net, true
}

// SetNet connects the item to net. Zones also carry the net name.
func (it *Item) SetNet(net Net) {
	sexp.SetChild(it.node, "net", kicadsexp.Symbol(fmt.Sprint(net.Number)))
	if _, hasName := sexp.FindNode(it.node, "net_name"); hasName || it.kind == KindZone {
		sexp.SetChild(it.node, "net_name", kicadsexp.Quoted(net.Name))
	}
}

// Position returns the anchor of the item: the (at ...) point for
// footprints, vias and texts, the start point for everything else
func (it *Item) Position() (Point, error) {
	for _, key := range []string{"at", "start", "center"} {
		if node, ok := sexp.FindNode(it.node, key); ok {
			return sexp.GetPoint(node)
		}
	}
	if pts, ok := sexp.FindNode(it.node, "pts"); ok {
		if xy, ok := sexp.FindNode(pts, "xy"); ok {
			return sexp.GetPoint(xy)
		}
	}
	return Point{}, fmt.Errorf("%w: (%s) has no position", ErrUnsupported, it.Type())
}

// SetPosition places a footprint at an absolute position, keeping its
// rotation. Pads and graphics follow the anchor; owned zones are moved by
// the same distance.
func (it *Item) SetPosition(p Point) error {
	if it.kind != KindFootprint {
		return fmt.Errorf("%w: cannot set position of (%s)", ErrUnsupported, it.Type())
	}
	at, ok := sexp.FindNode(it.node, "at")
	if !ok {
		it.node.Append(sexp.PointNode("at", p))
		return moveFootprintContent(it.node, p)
	}
	old, err := sexp.GetPoint(at)
	if err != nil {
		return err
	}
	if err := sexp.SetPoint(at, p); err != nil {
		return err
	}
	return moveFootprintContent(it.node, p.Sub(old))
}

// Ends returns the (start ...) and (end ...) points of a line
func (it *Item) Ends() (start, end Point, err error) {
	startNode, okS := sexp.FindNode(it.node, "start")
	endNode, okE := sexp.FindNode(it.node, "end")
	if !okS || !okE {
		return Point{}, Point{}, fmt.Errorf("%w: (%s) is not a line", ErrUnsupported, it.Type())
	}
	if start, err = sexp.GetPoint(startNode); err != nil {
		return Point{}, Point{}, err
	}
	if end, err = sexp.GetPoint(endNode); err != nil {
		return Point{}, Point{}, err
	}
	return start, end, nil
}

// Text returns the string of a gr_text
func (it *Item) Text() string {
	if it.Type() != "gr_text" {
		return ""
	}
	text, _ := sexp.GetString(it.node, 1)
	return text
}

// TextSize returns the glyph height of a text item, 1mm if unset
func (it *Item) TextSize() Coord {
	if effects, ok := sexp.FindNode(it.node, "effects"); ok {
		if font, ok := sexp.FindNode(effects, "font"); ok {
			if size, ok := sexp.FindNode(font, "size"); ok {
				if h, err := sexp.GetCoord(size, 1); err == nil {
					return h
				}
			}
		}
	}
	return FromMM(1)
}

// Rotation returns the (at x y angle) rotation in degrees
func (it *Item) Rotation() float64 {
	if at, ok := sexp.FindNode(it.node, "at"); ok {
		if angle, err := sexp.GetFloat(at, 3); err == nil {
			return angle
		}
	}
	return 0
}

func (it *Item) String() string {
	if id := it.ID(); id != "" {
		return fmt.Sprintf("%s %s", it.Type(), id)
	}
	return it.Type()
}
