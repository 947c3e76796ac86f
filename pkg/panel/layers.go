package panel

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
)

// ErrUnknownLayer is returned when a configured layer is not in the board's
// layer stack
var ErrUnknownLayer = errors.New("unknown layer")

// LayerTable maps layer names to the board's layer slots. It is built once
// per run and never changes.
type LayerTable struct {
	byName map[string]pcb.Layer
}

// ResolveLayers builds the table from the board's (layers ...) section.
// Both canonical names and user aliases resolve.
func ResolveLayers(b Board) LayerTable {
	layers := b.Layers()
	lm := pcb.NewLayerMap(layers)

	table := LayerTable{byName: make(map[string]pcb.Layer)}
	for _, name := range lm.Names() {
		layer, _ := lm.GetByName(name)
		table.byName[name] = *layer
	}
	return table
}

// Lookup returns the layer slot for name
func (t LayerTable) Lookup(name string) (pcb.Layer, error) {
	layer, ok := t.byName[name]
	if !ok {
		return pcb.Layer{}, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return layer, nil
}

// ID returns the layer number for name
func (t LayerTable) ID(name string) (int, error) {
	layer, err := t.Lookup(name)
	if err != nil {
		return 0, err
	}
	return layer.Number, nil
}

// Len returns the number of names in the table, aliases included
func (t LayerTable) Len() int {
	return len(t.byName)
}
