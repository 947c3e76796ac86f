package panel

import "github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"

// Board is the part of a board model the panelizer works on.
// *pcb.Board implements it.
type Board interface {
	Layers() []pcb.Layer
	Items(kind pcb.Kind) []*pcb.Item
	Add(items ...*pcb.Item)
	Remove(items ...*pcb.Item) int
	EdgesBoundingBox() pcb.BoundingBox

	NewLine(start, end pcb.Point, layer string, width pcb.Coord, id string) *pcb.Item
	NewText(text string, at pcb.Point, angle float64, layer string, size, thickness pcb.Coord, id string) *pcb.Item
}

var _ Board = (*pcb.Board)(nil)
