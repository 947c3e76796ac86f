package panel

import (
	"errors"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
)

// ErrEmptyBoard is returned when the board has nothing to measure
var ErrEmptyBoard = errors.New("board has no outline or content")

// Border is the panel outline built around the replicated array
type Border struct {
	Array    pcb.BoundingBox // extent of the copies before the rails
	Panel    pcb.BoundingBox // outer rectangle including the rails
	Segments []*pcb.Item     // top, right, bottom, left
	Removed  int             // per-copy outlines that were deleted
}

// BuildBorder replaces the outlines of the individual copies with a single
// rectangle around the array, grown by the rail widths.
//
// The array is measured from the copies' outlines, so it is taken before
// those outlines are deleted.
func BuildBorder(b Board, edge pcb.Layer, layout Layout, seed string) (*Border, error) {
	array := b.EdgesBoundingBox()
	if array.IsEmpty() {
		return nil, ErrEmptyBoard
	}

	var outlines []*pcb.Item
	for _, item := range b.Items(pcb.KindDrawing) {
		if item.IsOnLayer(edge.Name) {
			outlines = append(outlines, item)
		}
	}
	removed := b.Remove(outlines...)

	rect := array.Inflate(layout.HorizontalRail, layout.VerticalRail)
	topLeft := rect.Min
	topRight := pcb.Point{X: rect.Max.X, Y: rect.Min.Y}
	bottomRight := rect.Max
	bottomLeft := pcb.Point{X: rect.Min.X, Y: rect.Max.Y}

	corners := []struct {
		name       string
		start, end pcb.Point
	}{
		{"top", topLeft, topRight},
		{"right", topRight, bottomRight},
		{"bottom", bottomRight, bottomLeft},
		{"left", bottomLeft, topLeft},
	}

	border := &Border{Array: array, Panel: rect, Removed: removed}
	for _, c := range corners {
		id := pcb.DeriveID(seed, "border/"+c.name)
		border.Segments = append(border.Segments, b.NewLine(c.start, c.end, edge.Name, layout.EdgeWidth, id))
	}
	b.Add(border.Segments...)

	return border, nil
}
