package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

// boardCopy copies the fixture board into a temp dir
func boardCopy(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "simple.kicad_pcb"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "simple.kicad_pcb")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestPanelizeE2E(t *testing.T) {
	input := boardCopy(t)

	out, err := execute(t, "-x", "2", "-y", "2", "--row-pitch", "height", "--no-progress", input)
	require.NoError(t, err)

	for _, want := range []string{
		"REPORT",
		"Board dimensions",
		"50x30mm",
		"Panel dimensions",
		"100x80mm",
		"1 vertical, 3 horizontal",
		"simple_panelized.kicad_pcb",
	} {
		assert.Contains(t, out, want)
	}

	panelized, err := pcb.ParseFile(filepath.Join(filepath.Dir(input), "simple_panelized.kicad_pcb"))
	require.NoError(t, err)
	bbox := panelized.EdgesBoundingBox()
	assert.Equal(t, pcb.FromMM(100), bbox.Width())
	assert.Equal(t, pcb.FromMM(80), bbox.Height())
	assert.Equal(t, 4, panelized.Count(pcb.KindFootprint))
}

func TestPanelizeWithConfigAndDXF(t *testing.T) {
	input := boardCopy(t)
	dir := filepath.Dir(input)

	cfgPath := filepath.Join(dir, "panel.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("grid:\n  num_x: 3\n  num_y: 1\n"), 0644))

	output := filepath.Join(dir, "out.kicad_pcb")
	dxfPath := filepath.Join(dir, "vscore.dxf")

	out, err := execute(t, "--config", cfgPath, "-o", output, "--dxf", dxfPath, "--no-progress", input)
	require.NoError(t, err)
	assert.Contains(t, out, "2 vertical, 2 horizontal")

	assert.FileExists(t, output)
	assert.FileExists(t, dxfPath)
	assert.NoFileExists(t, filepath.Join(dir, "simple_panelized.kicad_pcb"))
}

func TestPanelizeRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.kicad_sch")
	require.NoError(t, os.WriteFile(path, []byte("(kicad_sch)"), 0644))

	_, err := execute(t, "--no-progress", path)
	assert.ErrorIs(t, err, pcb.ErrNotKicadPCB)
}

func TestPanelizeUnknownLayer(t *testing.T) {
	input := boardCopy(t)

	_, err := execute(t, "--layer", "Nope.User", "--no-progress", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panelize info")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(input), "simple_panelized.kicad_pcb"))
}

func TestPanelizeInvalidFlags(t *testing.T) {
	input := boardCopy(t)

	_, err := execute(t, "-x", "0", input)
	assert.Error(t, err)

	_, err = execute(t)
	assert.Error(t, err, "a board is required")
}

func TestDumpConfig(t *testing.T) {
	out, err := execute(t, "--dump-config", "-x", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "num_x: 6")
	assert.Contains(t, out, "layer: Eco1.User")
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "info", filepath.Join("testdata", "simple.kicad_pcb"))
	require.NoError(t, err)

	for _, want := range []string{"20221018", "50x30mm", "Eco1.User (User.Eco1)", "Edge.Cuts"} {
		assert.Contains(t, out, want)
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.Update("Positioning tracks", 1, 4)
	p.Update("Positioning tracks", 1, 4)
	p.Update("Positioning tracks", 4, 4)
	p.Update("Positioning drawings", 2, 2)
	p.Finish()

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("Positioning tracks")), "repeated percentages are not redrawn")
	assert.Contains(t, out, "Positioning drawings")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}
