package panel

import (
	"context"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
)

// family is one group of items copied together
type family struct {
	kind  pcb.Kind
	phase string
}

// families are replicated in this order, which is also the order the
// copies appear in the saved file
var families = []family{
	{pcb.KindTrack, "Positioning tracks"},
	{pcb.KindDrawing, "Positioning drawings"},
	{pcb.KindFootprint, "Positioning footprints"},
	{pcb.KindZone, "Determining nets of zones"},
}

// Grid is the copy arrangement: cell (x, y) sits at Pitch scaled by x and y
// from the source board
type Grid struct {
	NumX, NumY int
	Pitch      pcb.Point
}

// Offset returns the translation of cell (x, y)
func (g Grid) Offset(x, y int) pcb.Point {
	return pcb.Point{
		X: g.Pitch.X * pcb.Coord(x),
		Y: g.Pitch.Y * pcb.Coord(y),
	}
}

// Copies returns how many copies are made of each source item
func (g Grid) Copies() int {
	return g.NumX*g.NumY - 1
}

// Skipped records a source item that could not be copied
type Skipped struct {
	Item string
	Kind pcb.Kind
	Err  error
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s: %v", s.Item, s.Err)
}

// Replicator copies every track, drawing, footprint and zone of a board
// into the grid cells other than (0, 0)
type Replicator struct {
	grid Grid
	opts *Options

	copies  map[pcb.Kind]int
	skipped []Skipped
}

// NewReplicator creates a replicator for grid
func NewReplicator(grid Grid, opts *Options) *Replicator {
	return &Replicator{
		grid:   grid,
		opts:   opts,
		copies: make(map[pcb.Kind]int),
	}
}

// Run replicates all families in order. Items that cannot be copied are
// skipped and reported; the source item stays on the board unchanged.
func (r *Replicator) Run(ctx context.Context, b Board) error {
	for _, f := range families {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.replicateFamily(b, f); err != nil {
			return err
		}
	}
	return nil
}

// Copies returns the number of copies added per family
func (r *Replicator) Copies() map[pcb.Kind]int {
	out := make(map[pcb.Kind]int, len(r.copies))
	for k, v := range r.copies {
		out[k] = v
	}
	return out
}

// Skipped returns the items that were not copied
func (r *Replicator) Skipped() []Skipped {
	return r.skipped
}

func (r *Replicator) replicateFamily(b Board, f family) error {
	// snapshot before anything is added, so copies are never copied again
	sources := b.Items(f.kind)
	total := len(sources) * r.grid.NumX * r.grid.NumY

	var added []*pcb.Item
	done := 0
	for _, src := range sources {
		copies, err := r.replicateItem(src, func() {
			done++
			r.opts.Progress(f.phase, done, total)
		})
		if errors.Is(err, pcb.ErrUnsupported) {
			r.opts.Logger.Warn("Skipping item", "item", src, "err", err)
			r.skipped = append(r.skipped, Skipped{Item: src.String(), Kind: f.kind, Err: err})
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}
		added = append(added, copies...)
	}

	// keep the bar consistent when items were skipped
	if done < total {
		r.opts.Progress(f.phase, total, total)
	}

	b.Add(added...)
	r.copies[f.kind] += len(added)
	r.opts.Logger.Debug("Replicated family", "kind", f.kind, "sources", len(sources), "copies", len(added))
	return nil
}

// replicateItem returns the copies of src for every cell except (0, 0).
// Either every copy succeeds or none is returned.
func (r *Replicator) replicateItem(src *pcb.Item, step func()) ([]*pcb.Item, error) {
	copies := make([]*pcb.Item, 0, r.grid.Copies())

	for x := 0; x < r.grid.NumX; x++ {
		for y := 0; y < r.grid.NumY; y++ {
			step()
			if x == 0 && y == 0 {
				continue
			}

			dup, err := src.Duplicate(fmt.Sprintf("%d,%d", x, y))
			if err != nil {
				return nil, err
			}
			if err := r.place(src, dup, r.grid.Offset(x, y)); err != nil {
				return nil, err
			}
			copies = append(copies, dup)
		}
	}
	return copies, nil
}

func (r *Replicator) place(src, dup *pcb.Item, offset pcb.Point) error {
	switch src.Kind() {
	case pcb.KindFootprint:
		pos, err := src.Position()
		if err != nil {
			return err
		}
		return dup.SetPosition(pos.Add(offset))

	case pcb.KindZone:
		// the copy must stay on the source net, not a renumbered one
		if net, ok := src.Net(); ok {
			dup.SetNet(net)
		}
	}
	return dup.Move(offset)
}
