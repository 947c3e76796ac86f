package panel

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
)

// Orientation of a guide line
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Guide is a v-score line and its label
type Guide struct {
	Orientation Orientation
	Offset      pcb.Coord // X of a vertical line, Y of a horizontal one
	Line        *pcb.Item
	Label       *pcb.Item
}

// labelAngle is the text rotation for each orientation
var labelAngle = map[Orientation]float64{
	Vertical:   90,
	Horizontal: 0,
}

// guideBuilder lays out the v-score lines of one panel
type guideBuilder struct {
	b      Board
	layout Layout
	layer  pcb.Layer
	seed   string
}

// BuildGuides adds NumX-1 vertical and NumY+1 horizontal v-score lines
// across the panel, each with a label placed beyond the panel edge.
//
// Vertical lines separate adjacent columns only. Horizontal lines start at
// the top of the first row and follow every row, so the bottom edge of the
// last row gets one as well.
//
// Once placed, the lines are moved to the outline layer, filler runs, and
// the lines are moved back, so a filler that respects the outline keeps
// copper away from the score lines.
func BuildGuides(ctx context.Context, b Board, panelBox pcb.BoundingBox, pitch pcb.Point,
	layout Layout, layer, edge pcb.Layer, filler ZoneFiller, seed string) ([]Guide, error) {

	g := guideBuilder{b: b, layout: layout, layer: layer, seed: seed}

	top := panelBox.Min.Y - layout.VScoreOverrun
	bottom := panelBox.Max.Y + layout.VScoreOverrun
	left := panelBox.Min.X - layout.VScoreOverrun
	right := panelBox.Max.X + layout.VScoreOverrun
	offset := labelOffset(layout)

	var guides []Guide

	for x := 1; x < layout.NumX; x++ {
		xLoc := panelBox.Min.X + layout.HorizontalRail + pitch.X*pcb.Coord(x)
		guides = append(guides, g.guide(Vertical, x, xLoc,
			pcb.Point{X: xLoc, Y: top},
			pcb.Point{X: xLoc, Y: bottom},
			pcb.Point{X: xLoc, Y: top - offset}))
	}

	for y := 0; y <= layout.NumY; y++ {
		yLoc := panelBox.Min.Y + layout.VerticalRail + pitch.Y*pcb.Coord(y)
		guides = append(guides, g.guide(Horizontal, y, yLoc,
			pcb.Point{X: left, Y: yLoc},
			pcb.Point{X: right, Y: yLoc},
			pcb.Point{X: left - offset, Y: yLoc}))
	}

	for _, guide := range guides {
		b.Add(guide.Line, guide.Label)
	}

	if err := pullBack(ctx, b, guides, layer, edge, filler); err != nil {
		return guides, err
	}
	return guides, nil
}

func (g guideBuilder) guide(o Orientation, index int, loc pcb.Coord, start, end, labelAt pcb.Point) Guide {
	key := fmt.Sprintf("vscore/%s/%d", o, index)
	return Guide{
		Orientation: o,
		Offset:      loc,
		Line:        g.b.NewLine(start, end, g.layer.Name, g.layout.VScoreWidth, pcb.DeriveID(g.seed, key+"/line")),
		Label: g.b.NewText(g.layout.LabelText, labelAt, labelAngle[o], g.layer.Name,
			g.layout.LabelSize, g.layout.LabelThickness, pcb.DeriveID(g.seed, key+"/label")),
	}
}

// pullBack moves the guide lines to the outline layer while filler runs.
// Labels stay where they are.
func pullBack(ctx context.Context, b Board, guides []Guide, layer, edge pcb.Layer, filler ZoneFiller) error {
	for _, guide := range guides {
		guide.Line.SetLayer(edge.Name)
	}

	fillErr := filler.Fill(ctx, b)

	for _, guide := range guides {
		guide.Line.SetLayer(layer.Name)
	}

	if fillErr != nil {
		return fmt.Errorf("zone fill failed: %w", fillErr)
	}
	return nil
}

// labelOffset returns the distance from a guide line's start to its label
// center. The automatic offset clears half the label length plus one
// character height, assuming glyphs are 0.6 of the text size wide.
func labelOffset(layout Layout) pcb.Coord {
	if !layout.LabelOffsetAuto {
		return layout.LabelOffset
	}
	n := pcb.Coord(utf8.RuneCountInString(layout.LabelText))
	return n*layout.LabelSize*3/10 + layout.LabelSize
}
