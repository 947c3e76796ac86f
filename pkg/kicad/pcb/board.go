package pcb

import (
	"errors"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
)

var (
	// ErrNotKicadPCB is returned for input paths without a .kicad_pcb extension
	ErrNotKicadPCB = errors.New("not a *.kicad_pcb file")

	// ErrUnsupported is returned when an item cannot be duplicated or moved
	ErrUnsupported = errors.New("unsupported item")
)

// Board represents a complete KiCad PCB.
//
// The board keeps the parsed s-expression tree as its source of truth; items
// are thin views over nodes in that tree, so anything the panelizer does not
// touch is written back exactly as it was read.
type Board struct {
	Version   int    // File format version
	Generator string // Generator info (e.g., "pcbnew")

	root   *kicadsexp.List
	layers []Layer
	nets   []Net
	netMap *NetMap
}

// Root returns the (kicad_pcb ...) node
func (b *Board) Root() *kicadsexp.List {
	return b.root
}

// Layers returns the layer definitions in file order
func (b *Board) Layers() []Layer {
	out := make([]Layer, len(b.layers))
	copy(out, b.layers)
	return out
}

// LayerMap builds a lookup over the board's layers
func (b *Board) LayerMap() *LayerMap {
	return NewLayerMap(b.Layers())
}

// Nets returns the net definitions
func (b *Board) Nets() []Net {
	out := make([]Net, len(b.nets))
	copy(out, b.nets)
	return out
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	if net, ok := b.netMap.GetByName(name); ok {
		return net
	}
	return nil
}

// Items returns the top-level items of one family in file order.
// The slice is rebuilt on every call.
func (b *Board) Items(kind Kind) []*Item {
	var items []*Item
	for _, elem := range b.root.Items() {
		node, ok := elem.(*kicadsexp.List)
		if !ok {
			continue
		}
		if kindOf(node.Name()) == kind {
			items = append(items, &Item{node: node, kind: kind, board: b})
		}
	}
	return items
}

// Tracks returns segments, arcs and vias
func (b *Board) Tracks() []*Item { return b.Items(KindTrack) }

// Drawings returns board-level graphics
func (b *Board) Drawings() []*Item { return b.Items(KindDrawing) }

// Footprints returns placed footprints
func (b *Board) Footprints() []*Item { return b.Items(KindFootprint) }

// Zones returns copper and keepout zones
func (b *Board) Zones() []*Item { return b.Items(KindZone) }

// Count returns the number of top-level items of one family
func (b *Board) Count(kind Kind) int {
	n := 0
	for _, elem := range b.root.Items() {
		if node, ok := elem.(*kicadsexp.List); ok && kindOf(node.Name()) == kind {
			n++
		}
	}
	return n
}

// Add appends items to the board. Each item is placed after the last
// existing item of its family, or at the end of the file when the family is
// empty, so the written file keeps pcbnew's grouping.
func (b *Board) Add(items ...*Item) {
	byKind := make(map[Kind][]kicadsexp.Sexp)
	var order []Kind
	for _, item := range items {
		if _, seen := byKind[item.kind]; !seen {
			order = append(order, item.kind)
		}
		byKind[item.kind] = append(byKind[item.kind], item.node)
		item.board = b
	}

	for _, kind := range order {
		b.root.Insert(b.insertIndex(kind), byKind[kind]...)
	}
}

func (b *Board) insertIndex(kind Kind) int {
	last := -1
	for i, elem := range b.root.Items() {
		if node, ok := elem.(*kicadsexp.List); ok && kindOf(node.Name()) == kind {
			last = i
		}
	}
	if last < 0 {
		return b.root.Len()
	}
	return last + 1
}

// Remove deletes items from the board and reports how many were found
func (b *Board) Remove(items ...*Item) int {
	doomed := make(map[*kicadsexp.List]bool, len(items))
	for _, item := range items {
		doomed[item.node] = true
	}
	return b.root.RemoveFunc(func(elem kicadsexp.Sexp) bool {
		node, ok := elem.(*kicadsexp.List)
		return ok && doomed[node]
	})
}
