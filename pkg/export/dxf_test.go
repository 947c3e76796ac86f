package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/panel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

const outlineOnly = `(kicad_pcb (version 20221018) (generator pcbnew)
  (layers
    (0 "F.Cu" signal)
    (44 "Edge.Cuts" user)
    (48 "Eco1.User" user "User.Eco1")
  )
  (gr_rect (start 100 100) (end 150 130) (stroke (width 0.1) (type default)) (fill none) (layer "Edge.Cuts"))
)`

func panelize(t *testing.T, report bool) *panel.Result {
	t.Helper()
	board, err := pcb.Parse(strings.NewReader(outlineOnly))
	require.NoError(t, err)

	layout := panel.DefaultLayout()
	layout.NumX, layout.NumY = 2, 2
	layout.ReportText = report

	res, err := panel.Run(context.Background(), board, panel.Options{Layout: layout})
	require.NoError(t, err)
	return res
}

func TestWriteDXF(t *testing.T) {
	res := panelize(t, false)
	path := filepath.Join(t.TempDir(), "panel.dxf")

	require.NoError(t, WriteDXF(path, res))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)

	var lines []*entity.Line
	var texts []*entity.Text
	for _, ent := range drawing.Entities() {
		switch e := ent.(type) {
		case *entity.Line:
			lines = append(lines, e)
		case *entity.Text:
			texts = append(texts, e)
		}
	}

	// 4 outline segments, 1 vertical and 3 horizontal v-scores
	require.Len(t, lines, 8)
	assert.Len(t, texts, 4)

	// the top outline segment runs along y = panel height, origin bottom-left
	top := lines[0]
	assert.InDelta(t, 0.0, top.Start[0], 1e-9)
	assert.InDelta(t, 100.0, top.Start[1], 1e-9)
	assert.InDelta(t, 100.0, top.End[0], 1e-9)
	assert.InDelta(t, 100.0, top.End[1], 1e-9)

	assert.Equal(t, "V-SCORE", texts[0].Value)
	assert.InDelta(t, 90.0, texts[0].Rotation, 1e-9)
}

func TestWriteDXFSplitsReport(t *testing.T) {
	res := panelize(t, true)
	path := filepath.Join(t.TempDir(), "panel.dxf")

	require.NoError(t, WriteDXF(path, res))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)

	texts := 0
	for _, ent := range drawing.Entities() {
		if _, ok := ent.(*entity.Text); ok {
			texts++
		}
	}
	assert.Equal(t, 4+2, texts, "labels plus two report lines")
}

func TestWriteDXFWithoutPanel(t *testing.T) {
	assert.Error(t, WriteDXF(filepath.Join(t.TempDir(), "x.dxf"), &panel.Result{}))
}
