// Package panel arranges copies of a KiCad board in a grid and adds the
// panel outline and v-score guide lines.
//
// A run is a fixed sequence of phases over one board:
//
//   - resolve the layers every new item is placed on
//   - replicate tracks, drawings, footprints and zones over the grid
//   - replace the per-copy outlines with one panel outline
//   - add v-score lines and labels between the copies
//
// Each phase recomputes the bounding box it needs from the board itself.
package panel

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/charmbracelet/log"
)

// ErrInvalidLayout is returned for layouts that cannot produce a panel
var ErrInvalidLayout = errors.New("invalid panel layout")

// Pitch selects the board dimension used to step between rows
type Pitch string

const (
	// PitchWidth steps rows by the board width, like columns
	PitchWidth Pitch = "width"
	// PitchHeight steps rows by the board height
	PitchHeight Pitch = "height"
)

// Layout holds the geometric parameters of a panel
type Layout struct {
	NumX int // copies in X
	NumY int // copies in Y

	HorizontalRail pcb.Coord // rail added left and right of the array
	VerticalRail   pcb.Coord // rail added above and below the array
	RowPitch       Pitch

	EdgeWidth pcb.Coord // stroke width of the panel outline

	VScoreLayer     string
	VScoreOverrun   pcb.Coord // guide line length beyond the panel edge
	VScoreWidth     pcb.Coord
	LabelOffset     pcb.Coord // label center to guide line start
	LabelOffsetAuto bool      // derive LabelOffset from the label text
	LabelText       string
	LabelSize       pcb.Coord
	LabelThickness  pcb.Coord

	ReportText bool // write board and panel size below the panel
}

// DefaultLayout returns the stock 4 x 4 v-score layout
func DefaultLayout() Layout {
	return Layout{
		NumX:           4,
		NumY:           4,
		HorizontalRail: 0,
		VerticalRail:   pcb.FromMM(10),
		RowPitch:       PitchWidth,
		EdgeWidth:      pcb.FromMM(0.05),
		VScoreLayer:    pcb.LayerEco1User,
		VScoreOverrun:  pcb.FromMM(20),
		VScoreWidth:    pcb.FromMM(0.1),
		LabelOffset:    pcb.FromMM(10),
		LabelText:      "V-SCORE",
		LabelSize:      pcb.FromMM(2),
		LabelThickness: pcb.FromMM(0.1),
	}
}

// Validate checks the layout
func (l Layout) Validate() error {
	if l.NumX < 1 || l.NumY < 1 {
		return fmt.Errorf("%w: grid must be at least 1 x 1, got %d x %d", ErrInvalidLayout, l.NumX, l.NumY)
	}
	if l.HorizontalRail < 0 || l.VerticalRail < 0 {
		return fmt.Errorf("%w: rail widths must not be negative", ErrInvalidLayout)
	}
	switch l.RowPitch {
	case "", PitchWidth, PitchHeight:
	default:
		return fmt.Errorf("%w: unknown row pitch %q", ErrInvalidLayout, l.RowPitch)
	}
	if l.VScoreLayer == "" {
		return fmt.Errorf("%w: v-score layer is empty", ErrInvalidLayout)
	}
	return nil
}

// ProgressFunc is called as a phase advances; done runs from 1 to total
type ProgressFunc func(phase string, done, total int)

// ZoneFiller refills copper zones. It is called while the v-score lines sit
// on the outline layer so that a real filler pulls copper back from them.
type ZoneFiller interface {
	Fill(ctx context.Context, b Board) error
}

// NoopFiller leaves zones as they are
type NoopFiller struct{}

func (NoopFiller) Fill(context.Context, Board) error { return nil }

// Options configures a Run
type Options struct {
	Layout

	// Seed makes the ids of generated items unique per input; copies derive
	// their ids from the source item instead.
	Seed string

	Logger   *log.Logger
	Progress ProgressFunc
	Filler   ZoneFiller
}

// setDefaults fills unset options
func (o *Options) setDefaults() {
	if o.RowPitch == "" {
		o.RowPitch = PitchWidth
	}
	if o.Seed == "" {
		o.Seed = "panel"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Progress == nil {
		o.Progress = func(string, int, int) {}
	}
	if o.Filler == nil {
		o.Filler = NoopFiller{}
	}
}
