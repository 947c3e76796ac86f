package pcb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// Format versions that changed how new items are written
const (
	versionStroke = 20221018 // KiCad 7 writes (stroke ...) instead of (width ...)
	versionUUID   = 20240108 // KiCad 8 writes (uuid "...") instead of (tstamp ...)
)

// Extension is the file extension of KiCad boards
const Extension = ".kicad_pcb"

// CheckExtension rejects paths that do not name a KiCad board
func CheckExtension(path string) error {
	if filepath.Ext(path) != Extension {
		return fmt.Errorf("%w: %s", ErrNotKicadPCB, path)
	}
	return nil
}

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	if err := CheckExtension(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	// Parse s-expressions directly from reader (streaming, no memory limit)
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_pcb ...) expression
	root, ok := sexps[0].(*kicadsexp.List)
	if !ok || root.Name() != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got %s", sexps[0])
	}

	// Parse header (version and generator)
	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
		root:      root,
	}

	// Parse layers section
	if layersNode, found := sexp.FindNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.layers = layers
	}

	// Parse nets section
	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.nets = nets
	board.netMap = NewNetMap(nets)

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root *kicadsexp.List) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	// Validate version (must be KiCad 6.0 or later)
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := sexp.FindNode(root, "host"); found {
		// Format: (host pcbnew "(6.0.0)")
		if toolName, err := sexp.GetString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := sexp.FindNode(root, "generator"); found {
		// Newer format: (generator "pcbnew")
		if generatorName, err := sexp.GetString(genNode, 1); err == nil {
			gen = generatorName
		}
	}

	return ver, gen, nil
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (48 "Eco1.User" user "User.Eco1") ...)
func parseLayers(node *kicadsexp.List) ([]Layer, error) {
	var layers []Layer

	for _, elem := range sexp.GetListItems(node) {
		layerNode, ok := elem.(*kicadsexp.List)
		if !ok {
			continue
		}

		number, err := sexp.GetInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}

		name, err := sexp.GetString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer %d name: %w", number, err)
		}

		layerType, err := sexp.GetString(layerNode, 2)
		if err != nil {
			// Layer type is optional in some cases
			layerType = "user"
		}

		layer := Layer{
			Number: number,
			Name:   name,
			Type:   layerType,
		}
		if userName, err := sexp.GetString(layerNode, 3); err == nil {
			layer.UserName = userName
		}

		layers = append(layers, layer)
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}
	return layers, nil
}

// parseNets extracts net definitions from the root node
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root *kicadsexp.List) ([]Net, error) {
	nets := []Net{}

	for _, netNode := range sexp.FindAllNodes(root, "net") {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// Name is optional (net 0 often has empty name)
		name, _ := sexp.GetString(netNode, 2)

		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}
