// Package export writes the panel drawing handed to the board house: the
// outline and the v-score lines with their labels, as DXF.
package export

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/panel"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// DXF layer names
const (
	LayerOutline = "OUTLINE"
	LayerVScore  = "VSCORE"
	LayerNotes   = "NOTES"
)

// WriteDXF writes the panel outline, v-score lines and labels of res to path.
//
// The drawing is in millimetres with its origin at the bottom-left panel
// corner and Y pointing up, so it opens the right way round in CAD tools.
func WriteDXF(path string, res *panel.Result) error {
	if res == nil || res.Border == nil {
		return fmt.Errorf("no panel to export")
	}

	w := &dxfWriter{d: dxf.NewDrawing(), panel: res.Border.Panel}

	for _, l := range []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerOutline, color.White},
		{LayerVScore, color.Red},
		{LayerNotes, color.Cyan},
	} {
		if _, err := w.d.AddLayer(l.name, l.color, table.LT_CONTINUOUS, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	if err := w.lines(LayerOutline, res.Border.Segments); err != nil {
		return err
	}

	guideLines := make([]*pcb.Item, 0, len(res.Guides))
	for _, g := range res.Guides {
		guideLines = append(guideLines, g.Line)
	}
	if err := w.lines(LayerVScore, guideLines); err != nil {
		return err
	}
	for _, g := range res.Guides {
		if err := w.text(LayerVScore, g.Label); err != nil {
			return err
		}
	}

	if res.Report != nil {
		if err := w.text(LayerNotes, res.Report); err != nil {
			return err
		}
	}

	if err := w.d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

type dxfWriter struct {
	d     *drawing.Drawing
	panel pcb.BoundingBox
}

// xy maps a board point to drawing coordinates
func (w *dxfWriter) xy(p pcb.Point) (float64, float64) {
	return (p.X - w.panel.Min.X).MM(), (w.panel.Max.Y - p.Y).MM()
}

func (w *dxfWriter) lines(layer string, items []*pcb.Item) error {
	if err := w.d.ChangeLayer(layer); err != nil {
		return err
	}
	for _, item := range items {
		start, end, err := item.Ends()
		if err != nil {
			return err
		}
		x1, y1 := w.xy(start)
		x2, y2 := w.xy(end)
		if _, err := w.d.Line(x1, y1, 0, x2, y2, 0); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}
	return nil
}

// text writes one TEXT entity per line of a gr_text, stacked downwards
func (w *dxfWriter) text(layer string, item *pcb.Item) error {
	if err := w.d.ChangeLayer(layer); err != nil {
		return err
	}
	at, err := item.Position()
	if err != nil {
		return err
	}
	size := item.TextSize()
	x, y := w.xy(at)

	for i, line := range strings.Split(item.Text(), "\n") {
		t, err := w.d.Text(line, x, y-float64(i)*size.MM()*1.5, 0, size.MM())
		if err != nil {
			return fmt.Errorf("failed to add text: %w", err)
		}
		t.Rotation = item.Rotation()
	}
	return nil
}
