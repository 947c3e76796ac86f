package cmd

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <board.kicad_pcb>",
		Short: "Show board size, item counts and layer names",
		Long: `Prints what the panelizer sees in a board: the outline size used as the
copy pitch, how many items of each family would be copied, and the layer
table that v-score layer names are looked up in.`,
		Args: cobra.ExactArgs(1),
		RunE: runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	board, err := pcb.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}

	printTitle(out, args[0])
	printKeyValue(out, "Version", strconv.Itoa(board.Version))
	printKeyValue(out, "Generator", board.Generator)

	bbox := board.EdgesBoundingBox()
	printKeyValue(out, "Board dimensions", size(bbox.Width(), bbox.Height()))
	printKeyValue(out, "Nets", strconv.Itoa(len(board.Nets())))
	for _, kind := range []pcb.Kind{pcb.KindTrack, pcb.KindDrawing, pcb.KindFootprint, pcb.KindZone} {
		printKeyValue(out, kind.String()+"s", strconv.Itoa(board.Count(kind)))
	}

	fmt.Fprintln(out)
	printTitle(out, "Layers")
	for _, layer := range board.Layers() {
		name := layer.Name
		if layer.UserName != "" {
			name += " (" + layer.UserName + ")"
		}
		printKeyValue(out, strconv.Itoa(layer.Number), name+" "+layer.Type)
	}
	return nil
}
