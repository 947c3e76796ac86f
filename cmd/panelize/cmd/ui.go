package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/panel"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - titles
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(18)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
)

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styleTitle.Render(title))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func size(w, h pcb.Coord) string {
	return fmt.Sprintf("%sx%smm", w, h)
}

// printReport prints the result of a run
func printReport(w io.Writer, res *panel.Result, output string) {
	printTitle(w, "REPORT")

	bw, bh := res.BoardSize()
	pw, ph := res.PanelSize()
	printKeyValue(w, "Board dimensions", size(bw, bh))
	printKeyValue(w, "Panel dimensions", size(pw, ph))
	printKeyValue(w, "V-scores", fmt.Sprintf("%d vertical, %d horizontal",
		res.Count(panel.Vertical), res.Count(panel.Horizontal)))

	var copies []string
	for _, kind := range []pcb.Kind{pcb.KindTrack, pcb.KindDrawing, pcb.KindFootprint, pcb.KindZone} {
		copies = append(copies, fmt.Sprintf("%d %ss", res.Copies[kind], kind))
	}
	printKeyValue(w, "Copies added", strings.Join(copies, ", "))

	for _, s := range res.Skipped {
		printWarning(w, "skipped %s", s)
	}
	printSuccess(w, "Board output saved to %s", output)
}

// progressPrinter draws one progress bar per phase, redrawing in place
type progressPrinter struct {
	w       io.Writer
	bar     progress.Model
	phase   string
	percent int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{
		w:       w,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		percent: -1,
	}
}

// Update implements panel.ProgressFunc
func (p *progressPrinter) Update(phase string, done, total int) {
	if total <= 0 {
		return
	}
	percent := done * 100 / total
	if phase == p.phase && percent == p.percent {
		return
	}
	if phase != p.phase && p.phase != "" {
		fmt.Fprintln(p.w)
	}
	p.phase, p.percent = phase, percent
	fmt.Fprintf(p.w, "\r%s %s", p.bar.ViewAs(float64(done)/float64(total)), phase)
}

// Finish ends the current bar line
func (p *progressPrinter) Finish() {
	if p.phase != "" {
		fmt.Fprintln(p.w)
	}
}
