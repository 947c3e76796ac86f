package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTracePanel/internal/config"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/export"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/panel"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags
var version = "0.1.0"

// rootOptions holds the flags of the panelize command
type rootOptions struct {
	verbose    bool
	noProgress bool
	configPath string
	dumpConfig bool
	output     string
	dxfPath    string

	numX, numY      int
	hRail, vRail    float64
	layer           string
	rowPitch        string
	reportText      bool
	labelOffsetAuto bool
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context) int {
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "panelize <board.kicad_pcb>",
		Short: "Panelize a KiCad board with v-score lines",
		Long: `panelize arranges copies of a KiCad board in a grid, replaces the
individual outlines with one panel outline and adds v-score lines with labels
between the copies.

The panel is written next to the input as <name>_panelized.kicad_pcb.

Examples:
  panelize board.kicad_pcb                   # 4 x 4 panel with default rails
  panelize -x 3 -y 2 board.kicad_pcb         # 3 x 2 panel
  panelize --config panel.yaml board.kicad_pcb
  panelize --dxf vscore.dxf board.kicad_pcb  # also write the v-score drawing
  panelize --dump-config > panel.yaml        # start a config file`,
		Version:      version,
		SilenceUsage: true,
		// errors are printed by Execute
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.dumpConfig {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if opts.dumpConfig {
				data, err := cfg.Dump()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return runPanelize(cmd, opts, cfg, args[0])
		},
	}

	flags := root.Flags()
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "do not draw progress bars")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML file with panel parameters")
	flags.BoolVar(&opts.dumpConfig, "dump-config", false, "print the effective configuration as YAML and exit")
	flags.StringVarP(&opts.output, "output", "o", "", "output board (default <input>_panelized.kicad_pcb)")
	flags.StringVar(&opts.dxfPath, "dxf", "", "also write outline and v-scores to this DXF file")

	flags.IntVarP(&opts.numX, "num-x", "x", 0, "copies in X")
	flags.IntVarP(&opts.numY, "num-y", "y", 0, "copies in Y")
	flags.Float64Var(&opts.hRail, "h-rail", 0, "rail width left and right of the array (mm)")
	flags.Float64Var(&opts.vRail, "v-rail", 0, "rail width above and below the array (mm)")
	flags.StringVar(&opts.layer, "layer", "", "layer for v-score lines and labels")
	flags.StringVar(&opts.rowPitch, "row-pitch", "", "board dimension rows are stepped by: width or height")
	flags.BoolVar(&opts.reportText, "report-text", false, "write board and panel size as text below the panel")
	flags.BoolVar(&opts.labelOffsetAuto, "label-offset-auto", false, "place labels from their text length")

	root.AddCommand(newInfoCmd())
	return root
}

// loadConfig reads the config file, if any, and applies flags on top
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("num-x") {
		cfg.Grid.NumX = o.numX
	}
	if flags.Changed("num-y") {
		cfg.Grid.NumY = o.numY
	}
	if flags.Changed("h-rail") {
		cfg.Rails.Horizontal = o.hRail
	}
	if flags.Changed("v-rail") {
		cfg.Rails.Vertical = o.vRail
	}
	if flags.Changed("layer") {
		cfg.VScore.Layer = o.layer
	}
	if flags.Changed("row-pitch") {
		cfg.Grid.RowPitch = o.rowPitch
	}
	if flags.Changed("report-text") {
		cfg.ReportText = o.reportText
	}
	if flags.Changed("label-offset-auto") {
		cfg.VScore.Label.OffsetAuto = o.labelOffsetAuto
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) logger(w io.Writer) *log.Logger {
	level := log.InfoLevel
	if o.verbose {
		level = log.DebugLevel
	}
	return newLogger(w, level)
}

func runPanelize(cmd *cobra.Command, opts *rootOptions, cfg *config.Config, input string) error {
	out := cmd.OutOrStdout()
	logger := opts.logger(cmd.ErrOrStderr())

	// reject other files before touching the disk
	if err := pcb.CheckExtension(input); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = panel.OutputPath(input)
	}

	board, err := pcb.ParseFile(input)
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}
	logger.Info("Loaded board", "file", input, "version", board.Version)

	runOpts := panel.Options{
		Layout: cfg.Layout(),
		Seed:   filepath.Base(input),
		Logger: logger,
	}
	var bar *progressPrinter
	if !opts.noProgress {
		bar = newProgressPrinter(cmd.ErrOrStderr())
		runOpts.Progress = bar.Update
	}

	res, err := panel.Run(cmd.Context(), board, runOpts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if errors.Is(err, panel.ErrUnknownLayer) {
			return fmt.Errorf("%w (see `panelize info %s` for the layer names)", err, input)
		}
		return err
	}

	if err := board.Save(output); err != nil {
		return fmt.Errorf("error saving panel: %w", err)
	}

	if opts.dxfPath != "" {
		if err := export.WriteDXF(opts.dxfPath, res); err != nil {
			return fmt.Errorf("error writing DXF: %w", err)
		}
		logger.Info("Wrote v-score drawing", "file", opts.dxfPath)
	}

	printReport(out, res, output)
	return nil
}
