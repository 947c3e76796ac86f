package pcb

import (
	"math"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
)

// EdgesBoundingBox calculates the outline of the board: the extent of every
// Edge.Cuts graphic, including Edge.Cuts graphics inside footprints.
// Boards without an outline fall back to GetBoundingBox.
//
// Stroke widths are ignored, so a 50 x 30 mm rectangle measures exactly
// 50 x 30 mm.
func (b *Board) EdgesBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, item := range b.Drawings() {
		if item.IsOnLayer(LayerEdgeCuts) {
			bbox.ExpandBox(item.BoundingBox())
		}
	}

	for _, fp := range b.Footprints() {
		bbox.ExpandBox(fp.footprintEdgesBoundingBox())
	}

	if bbox.IsEmpty() {
		return b.GetBoundingBox()
	}
	return bbox
}

// GetBoundingBox calculates the bounding box of the entire board
// Includes tracks, footprints, graphics and zones
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	for _, kind := range []Kind{KindTrack, KindDrawing, KindFootprint, KindZone} {
		for _, item := range b.Items(kind) {
			bbox.ExpandBox(item.BoundingBox())
		}
	}
	return bbox
}

// BoundingBox returns the geometric extent of the item
func (it *Item) BoundingBox() BoundingBox {
	switch it.Type() {
	case "footprint":
		return it.footprintBoundingBox()
	case "zone":
		return pointsBoundingBox(it.node, Point{}, 0)
	}
	return primitiveBoundingBox(it.node, Point{}, 0)
}

// primitiveBoundingBox measures a graphic or track node whose coordinates
// are given relative to origin and rotated by angle degrees
func primitiveBoundingBox(node *kicadsexp.List, origin Point, angle float64) BoundingBox {
	bbox := NewBoundingBox()
	point := func(key string) (Point, bool) {
		child, ok := sexp.FindNode(node, key)
		if !ok {
			return Point{}, false
		}
		p, err := sexp.GetPoint(child)
		if err != nil {
			return Point{}, false
		}
		return transformPoint(p, origin, angle), true
	}

	switch node.Name() {
	case "gr_circle", "fp_circle":
		center, okC := point("center")
		end, okE := point("end")
		if okC && okE {
			r := Coord(math.Round(math.Hypot(float64(end.X-center.X), float64(end.Y-center.Y))))
			bbox.Expand(Point{X: center.X - r, Y: center.Y - r})
			bbox.Expand(Point{X: center.X + r, Y: center.Y + r})
		}
		return bbox

	case "via":
		at, ok := point("at")
		if !ok {
			return bbox
		}
		var r Coord
		if size, ok := sexp.FindNode(node, "size"); ok {
			if d, err := sexp.GetCoord(size, 1); err == nil {
				r = d / 2
			}
		}
		bbox.Expand(Point{X: at.X - r, Y: at.Y - r})
		bbox.Expand(Point{X: at.X + r, Y: at.Y + r})
		return bbox

	case "gr_rect", "fp_rect", "gr_bbox":
		// all four corners, so a rectangle inside a rotated footprint stays enclosed
		start, okS := sexp.FindNode(node, "start")
		end, okE := sexp.FindNode(node, "end")
		if !okS || !okE {
			return bbox
		}
		s, errS := sexp.GetPoint(start)
		e, errE := sexp.GetPoint(end)
		if errS != nil || errE != nil {
			return bbox
		}
		for _, corner := range []Point{s, e, {X: s.X, Y: e.Y}, {X: e.X, Y: s.Y}} {
			bbox.Expand(transformPoint(corner, origin, angle))
		}
		return bbox
	}

	// For arcs, include start, mid and end points
	// This is approximate but good enough for bounding box
	for _, key := range []string{"start", "mid", "end", "at", "center"} {
		if p, ok := point(key); ok {
			bbox.Expand(p)
		}
	}
	bbox.ExpandBox(pointsBoundingBox(node, origin, angle))
	return bbox
}

// pointsBoundingBox measures every (pts ...) list inside node
func pointsBoundingBox(node *kicadsexp.List, origin Point, angle float64) BoundingBox {
	bbox := NewBoundingBox()
	expand := func(l *kicadsexp.List) {
		if p, err := sexp.GetPoint(l); err == nil {
			bbox.Expand(transformPoint(p, origin, angle))
		}
	}
	sexp.Walk(node, func(l *kicadsexp.List) bool {
		if l.Name() != "pts" {
			return true
		}
		for _, xy := range sexp.FindAllNodes(l, "xy") {
			expand(xy)
		}
		for _, arc := range sexp.FindAllNodes(l, "arc") {
			for _, key := range []string{"start", "mid", "end"} {
				if p, ok := sexp.FindNode(arc, key); ok {
					expand(p)
				}
			}
		}
		return false
	})
	return bbox
}

// footprintBoundingBox includes all pads with their positions relative to the
// footprint anchor
func (it *Item) footprintBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	origin, err := it.Position()
	if err != nil {
		return bbox
	}
	angle := it.Rotation()

	for _, pad := range sexp.FindAllNodes(it.node, "pad") {
		at, ok := sexp.FindNode(pad, "at")
		if !ok {
			continue
		}
		rel, err := sexp.GetPoint(at)
		if err != nil {
			continue
		}
		abs := transformPoint(rel, origin, angle)

		// Expand by pad size (approximate as rectangle)
		var halfW, halfH Coord
		if size, ok := sexp.FindNode(pad, "size"); ok {
			w, _ := sexp.GetCoord(size, 1)
			h, _ := sexp.GetCoord(size, 2)
			halfW, halfH = w/2, h/2
		}
		bbox.Expand(Point{X: abs.X - halfW, Y: abs.Y - halfH})
		bbox.Expand(Point{X: abs.X + halfW, Y: abs.Y + halfH})
	}

	// If no pads, at least include footprint position
	if bbox.IsEmpty() {
		bbox.Expand(origin)
	}

	return bbox
}

// footprintEdgesBoundingBox measures the footprint's own Edge.Cuts graphics
func (it *Item) footprintEdgesBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	origin, err := it.Position()
	if err != nil {
		return bbox
	}
	angle := it.Rotation()

	for _, elem := range it.node.Items() {
		child, ok := elem.(*kicadsexp.List)
		if !ok {
			continue
		}
		switch child.Name() {
		case "fp_line", "fp_arc", "fp_circle", "fp_rect", "fp_poly":
		default:
			continue
		}
		layer, ok := sexp.FindNode(child, "layer")
		if !ok {
			continue
		}
		if name, _ := sexp.GetString(layer, 1); name != LayerEdgeCuts {
			continue
		}
		bbox.ExpandBox(primitiveBoundingBox(child, origin, angle))
	}
	return bbox
}

// transformPoint maps a footprint-relative position to board coordinates
func transformPoint(rel, origin Point, angle float64) Point {
	if angle == 0 {
		return rel.Add(origin)
	}

	x, y := float64(rel.X), float64(rel.Y)

	// Apply footprint rotation (negate to match the Y-down board coordinates)
	angleRad := -angle * math.Pi / 180.0
	cos := math.Cos(angleRad)
	sin := math.Sin(angleRad)
	newX := x*cos - y*sin
	newY := x*sin + y*cos

	return Point{
		X: Coord(math.Round(newX)) + origin.X,
		Y: Coord(math.Round(newY)) + origin.Y,
	}
}
