package pcb

import (
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
)

// Shared geometry types (aliases to sexp package)
type Coord = sexp.Coord
type Point = sexp.Point
type BoundingBox = sexp.BoundingBox

// Re-export geometry constructors
var (
	NewBoundingBox = sexp.NewBoundingBox
	FromMM         = sexp.FromMM
	Pt             = sexp.Pt
)

// Well-known layer names
const (
	LayerEdgeCuts = "Edge.Cuts"
	LayerEco1User = "Eco1.User"
)

// Layer represents a PCB layer slot from the (layers ...) section
type Layer struct {
	Number   int    // Layer number (ordinal)
	Name     string // Canonical layer name (e.g., "F.Cu", "Eco1.User")
	Type     string // Layer type (e.g., "signal", "user")
	UserName string // Optional user-visible alias (e.g., "User.Eco1")
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// LayerMap provides efficient lookup of layers by number or name
type LayerMap struct {
	byNumber map[int]*Layer
	byName   map[string]*Layer
}

// NewLayerMap creates a LayerMap from a slice of layers.
// Both the canonical name and the user alias of a layer resolve to it.
func NewLayerMap(layers []Layer) *LayerMap {
	lm := &LayerMap{
		byNumber: make(map[int]*Layer),
		byName:   make(map[string]*Layer),
	}

	for i := range layers {
		layer := &layers[i]
		lm.byNumber[layer.Number] = layer
		lm.byName[layer.Name] = layer
		if layer.UserName != "" {
			if _, taken := lm.byName[layer.UserName]; !taken {
				lm.byName[layer.UserName] = layer
			}
		}
	}

	return lm
}

// GetByName retrieves a layer by its name (e.g., "F.Cu")
func (lm *LayerMap) GetByName(name string) (*Layer, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

// GetByNumber retrieves a layer by its number
func (lm *LayerMap) GetByNumber(num int) (*Layer, bool) {
	layer, ok := lm.byNumber[num]
	return layer, ok
}

// Names returns every name the map resolves, aliases included
func (lm *LayerMap) Names() []string {
	names := make([]string, 0, len(lm.byName))
	for name := range lm.byName {
		names = append(names, name)
	}
	return names
}

// IsCopperLayer checks if a layer is a copper layer
func (lm *LayerMap) IsCopperLayer(name string) bool {
	layer, ok := lm.byName[name]
	if !ok {
		return false
	}
	return layer.Type == "signal" || layer.Type == "power" || layer.Type == "mixed"
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}

	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		// Only index non-empty names
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}

	return nm
}

// GetByName retrieves a net by its name (e.g., "GND", "+5V")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// Kind groups board items into the families the panelizer replicates
type Kind int

const (
	KindUnknown   Kind = iota
	KindTrack          // segment, arc, via
	KindDrawing        // gr_* graphics, dimensions, targets, images
	KindFootprint      // footprint
	KindZone           // zone
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindDrawing:
		return "drawing"
	case KindFootprint:
		return "footprint"
	case KindZone:
		return "zone"
	}
	return "unknown"
}

// kindOf classifies a top-level node by its keyword
func kindOf(name string) Kind {
	switch name {
	case "segment", "arc", "via":
		return KindTrack
	case "gr_line", "gr_arc", "gr_circle", "gr_rect", "gr_poly", "gr_curve",
		"gr_text", "gr_text_box", "gr_bbox", "dimension", "target", "image":
		return KindDrawing
	case "footprint":
		return KindFootprint
	case "zone":
		return KindZone
	}
	return KindUnknown
}
