package panel

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
)

// Result describes a finished panel
type Result struct {
	Board  pcb.BoundingBox // outline of the source board
	Pitch  pcb.Point       // distance between copies
	Border *Border
	Guides []Guide
	Report *pcb.Item // report text, if requested

	Copies  map[pcb.Kind]int
	Skipped []Skipped
}

// BoardSize returns the source board width and height
func (r *Result) BoardSize() (w, h pcb.Coord) {
	return r.Board.Width(), r.Board.Height()
}

// PanelSize returns the panel width and height, rails included
func (r *Result) PanelSize() (w, h pcb.Coord) {
	return r.Border.Panel.Width(), r.Border.Panel.Height()
}

// Count returns the number of guides of one orientation
func (r *Result) Count(o Orientation) int {
	n := 0
	for _, g := range r.Guides {
		if g.Orientation == o {
			n++
		}
	}
	return n
}

// Summary is the dimensions report printed after a run
func (r *Result) Summary() string {
	bw, bh := r.BoardSize()
	pw, ph := r.PanelSize()
	return fmt.Sprintf("Board dimensions: %sx%smm\nPanel dimensions: %sx%smm", bw, bh, pw, ph)
}

// OutputPath returns <stem>_panelized<ext> next to input
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_panelized" + ext
}

// Run panelizes b in place
func Run(ctx context.Context, b Board, opts Options) (*Result, error) {
	opts.setDefaults()
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	// Every placement below needs both layers, so resolve them first
	layers := ResolveLayers(b)
	edge, err := layers.Lookup(pcb.LayerEdgeCuts)
	if err != nil {
		return nil, err
	}
	vscore, err := layers.Lookup(opts.VScoreLayer)
	if err != nil {
		return nil, fmt.Errorf("v-score layer: %w", err)
	}

	outline := b.EdgesBoundingBox()
	if outline.IsEmpty() {
		return nil, ErrEmptyBoard
	}
	res := &Result{Board: outline, Pitch: pitch(outline, opts.RowPitch)}
	logger.Info("Loaded board", "width", outline.Width(), "height", outline.Height())

	grid := Grid{NumX: opts.NumX, NumY: opts.NumY, Pitch: res.Pitch}
	rep := NewReplicator(grid, &opts)
	if err := rep.Run(ctx, b); err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	res.Copies = rep.Copies()
	res.Skipped = rep.Skipped()
	if len(res.Skipped) > 0 {
		logger.Warn("Some items were not copied", "count", len(res.Skipped))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Border, err = BuildBorder(b, edge, opts.Layout, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("border: %w", err)
	}
	logger.Info("New Edge.Cuts created", "removed", res.Border.Removed)

	// the border defines the board extent from here on
	panelBox := b.EdgesBoundingBox()

	res.Guides, err = BuildGuides(ctx, b, panelBox, res.Pitch, opts.Layout, vscore, edge, opts.Filler, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("guides: %w", err)
	}
	logger.Info("V-scores created",
		"vertical", res.Count(Vertical), "horizontal", res.Count(Horizontal))

	if opts.ReportText {
		res.Report = reportText(b, res, panelBox, vscore, opts)
		b.Add(res.Report)
	}

	return res, nil
}

// pitch returns the spacing between copies. Columns always step by the
// board width; rows step by the width too unless PitchHeight is selected.
func pitch(outline pcb.BoundingBox, rows Pitch) pcb.Point {
	p := pcb.Point{X: outline.Width(), Y: outline.Width()}
	if rows == PitchHeight {
		p.Y = outline.Height()
	}
	return p
}

// reportText places the dimensions summary below the panel, clear of the
// horizontal guide labels
func reportText(b Board, res *Result, panelBox pcb.BoundingBox, layer pcb.Layer, opts Options) *pcb.Item {
	at := pcb.Point{
		X: panelBox.Center().X,
		Y: panelBox.Max.Y + opts.VScoreOverrun + 2*opts.LabelSize,
	}
	return b.NewText(res.Summary(), at, 0, layer.Name, opts.LabelSize, opts.LabelThickness,
		pcb.DeriveID(opts.Seed, "report"))
}
