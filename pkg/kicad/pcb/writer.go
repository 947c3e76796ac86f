package pcb

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
)

// Write serializes the board in the .kicad_pcb layout
func (b *Board) Write(w io.Writer) error {
	return kicadsexp.Write(w, b.root)
}

// Format returns the serialized board
func (b *Board) Format() string {
	return kicadsexp.Format(b.root)
}

// Save writes the board to path. The file is written next to its final
// location and renamed into place, so a failed save never leaves a
// truncated board behind.
func (b *Board) Save(path string) error {
	var sb strings.Builder
	if err := b.Write(&sb); err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(sb.String()), 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// NewLine builds a gr_line that is not yet on the board. id becomes the
// item's uuid (tstamp in files older than KiCad 8).
func (b *Board) NewLine(start, end Point, layer string, width Coord, id string) *Item {
	node := kicadsexp.NewNode("gr_line",
		sexp.PointNode("start", start),
		sexp.PointNode("end", end),
	)
	node.Append(b.strokeNode(width))
	node.Append(kicadsexp.NewNode("layer", kicadsexp.Quoted(layer)))
	node.Append(b.idNode(id))
	return NewItem(node)
}

// NewText builds a gr_text that is not yet on the board
func (b *Board) NewText(text string, at Point, angle float64, layer string, size, thickness Coord, id string) *Item {
	pos := sexp.PointNode("at", at)
	if angle != 0 {
		pos.Append(kicadsexp.Symbol(sexp.FormatAngle(angle)))
	}

	font := kicadsexp.NewNode("font",
		kicadsexp.NewNode("size",
			kicadsexp.Symbol(sexp.FormatCoord(size)),
			kicadsexp.Symbol(sexp.FormatCoord(size))),
		kicadsexp.NewNode("thickness", kicadsexp.Symbol(sexp.FormatCoord(thickness))),
	)

	node := kicadsexp.NewNode("gr_text",
		kicadsexp.Quoted(text),
		pos,
		kicadsexp.NewNode("layer", kicadsexp.Quoted(layer)),
		b.idNode(id),
		kicadsexp.NewNode("effects", font),
	)
	return NewItem(node)
}

// strokeNode returns (stroke (width w) (type default)) for KiCad 7 and later,
// (width w) for KiCad 6
func (b *Board) strokeNode(width Coord) *kicadsexp.List {
	w := kicadsexp.NewNode("width", kicadsexp.Symbol(sexp.FormatCoord(width)))
	if b.Version < versionStroke {
		return w
	}
	return kicadsexp.NewNode("stroke", w, kicadsexp.NewNode("type", kicadsexp.Symbol("default")))
}

func (b *Board) idNode(id string) *kicadsexp.List {
	if b.Version < versionUUID {
		return kicadsexp.NewNode("tstamp", kicadsexp.Symbol(id))
	}
	return kicadsexp.NewNode("uuid", kicadsexp.Quoted(id))
}
