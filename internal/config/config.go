// Package config holds the panel parameters and loads them from YAML.
// All lengths are millimetres.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/panel"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate
var ErrInvalid = errors.New("invalid config")

// Config is the full panelizer configuration
type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Rails  RailsConfig  `yaml:"rails"`
	VScore VScoreConfig `yaml:"vscore"`

	EdgeWidth  float64 `yaml:"edge_width"`
	ReportText bool    `yaml:"report_text"`
}

// GridConfig is the copy arrangement
type GridConfig struct {
	NumX     int    `yaml:"num_x"`
	NumY     int    `yaml:"num_y"`
	RowPitch string `yaml:"row_pitch"` // width, height
}

// RailsConfig is the border added around the array
type RailsConfig struct {
	Horizontal float64 `yaml:"horizontal"` // left and right
	Vertical   float64 `yaml:"vertical"`   // top and bottom
}

// VScoreConfig describes the guide lines
type VScoreConfig struct {
	Layer   string      `yaml:"layer"`
	Overrun float64     `yaml:"overrun"` // line length beyond the panel
	Width   float64     `yaml:"width"`
	Label   LabelConfig `yaml:"label"`
}

// LabelConfig describes the text next to each guide line
type LabelConfig struct {
	Text       string  `yaml:"text"`
	Size       float64 `yaml:"size"`
	Thickness  float64 `yaml:"thickness"`
	Offset     float64 `yaml:"offset"` // label center to line start
	OffsetAuto bool    `yaml:"offset_auto"`
}

// Default returns the stock 4 x 4 layout
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			NumX:     4,
			NumY:     4,
			RowPitch: string(panel.PitchWidth),
		},
		Rails: RailsConfig{
			Horizontal: 0,
			Vertical:   10,
		},
		VScore: VScoreConfig{
			Layer:   pcb.LayerEco1User,
			Overrun: 20,
			Width:   0.1,
			Label: LabelConfig{
				Text:      "V-SCORE",
				Size:      2,
				Thickness: 0.1,
				Offset:    10,
			},
		},
		EdgeWidth: 0.05,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that cannot produce a panel
func (c *Config) Validate() error {
	if c.Grid.NumX < 1 || c.Grid.NumY < 1 {
		return fmt.Errorf("%w: grid must be at least 1 x 1, got %d x %d", ErrInvalid, c.Grid.NumX, c.Grid.NumY)
	}
	switch panel.Pitch(c.Grid.RowPitch) {
	case panel.PitchWidth, panel.PitchHeight:
	default:
		return fmt.Errorf("%w: row_pitch must be %q or %q, got %q", ErrInvalid, panel.PitchWidth, panel.PitchHeight, c.Grid.RowPitch)
	}
	if c.Rails.Horizontal < 0 || c.Rails.Vertical < 0 {
		return fmt.Errorf("%w: rail widths must not be negative", ErrInvalid)
	}
	if c.VScore.Layer == "" {
		return fmt.Errorf("%w: vscore.layer is empty", ErrInvalid)
	}
	if c.VScore.Overrun < 0 || c.VScore.Width <= 0 || c.EdgeWidth <= 0 {
		return fmt.Errorf("%w: line widths must be positive and overrun not negative", ErrInvalid)
	}
	if c.VScore.Label.Size <= 0 || c.VScore.Label.Thickness <= 0 {
		return fmt.Errorf("%w: label size and thickness must be positive", ErrInvalid)
	}
	return nil
}

// Layout converts the configuration to panel units
func (c *Config) Layout() panel.Layout {
	return panel.Layout{
		NumX:            c.Grid.NumX,
		NumY:            c.Grid.NumY,
		HorizontalRail:  pcb.FromMM(c.Rails.Horizontal),
		VerticalRail:    pcb.FromMM(c.Rails.Vertical),
		RowPitch:        panel.Pitch(c.Grid.RowPitch),
		EdgeWidth:       pcb.FromMM(c.EdgeWidth),
		VScoreLayer:     c.VScore.Layer,
		VScoreOverrun:   pcb.FromMM(c.VScore.Overrun),
		VScoreWidth:     pcb.FromMM(c.VScore.Width),
		LabelOffset:     pcb.FromMM(c.VScore.Label.Offset),
		LabelOffsetAuto: c.VScore.Label.OffsetAuto,
		LabelText:       c.VScore.Label.Text,
		LabelSize:       pcb.FromMM(c.VScore.Label.Size),
		LabelThickness:  pcb.FromMM(c.VScore.Label.Thickness),
		ReportText:      c.ReportText,
	}
}

// Dump returns the configuration as YAML
func (c *Config) Dump() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
