package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/inspect"
	"github.com/matzehuels/scenesync/pkg/replay"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - visible
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleVisible = lipgloss.NewStyle().Foreground(colorGreen)
	styleHidden  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
	iconCursor  = "▸"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, styleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Replay Output
// =============================================================================

// printStats prints replay statistics on a single line.
func printStats(w io.Writer, s replay.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d frames", s.Frames),
		fmt.Sprintf("%d redraws", s.Redraws),
	}
	if s.Issues > 0 {
		parts = append(parts, fmt.Sprintf("%d issues", s.Issues))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += styleDim.Render(" · ")
		}
		line += styleDim.Render(part)
	}
	fmt.Fprintln(w, line+styleDim.Render(" · ")+statusStyle.Render(status))
}

// frameTitle names a replay step.
func frameTitle(fr replay.FrameResult) string {
	if fr.Frame == nil {
		return "mounted"
	}
	name := fr.Frame.Name
	if name == "" {
		name = "frame"
	}
	target := fr.Frame.Target
	if target == "" {
		target = "(root)"
	}
	return fmt.Sprintf("#%d %s %s %s", fr.Frame.Index+1, name, iconArrow, target)
}

// stateTable renders one row per representation. cursor marks a row, or
// none when negative.
func stateTable(s inspect.Snapshot, cursor int) string {
	reps := s.Representations()
	rows := make([][]string, 0, len(reps))
	for i, n := range reps {
		r := n.Representation
		mark := " "
		if i == cursor {
			mark = iconCursor
		}
		rows = append(rows, []string{
			mark,
			n.Path,
			yesNo(r.ValidData),
			yesNo(r.Visible),
			r.Preset,
			r.ColorRange,
			fmt.Sprintf("%g..%g", r.MappingRange[0], r.MappingRange[1]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Representation", "Data", "Visible", "Preset", "Range", "Mapping").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(reps) {
				return base
			}
			style := styleHidden
			if reps[row].Representation.Visible {
				style = styleVisible
			}
			if row == cursor {
				style = style.Bold(true)
			}
			return style.Inherit(base)
		})
	return t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printIssues lists errors reported while rendering a step.
func printIssues(w io.Writer, issues []host.Issue) {
	for _, is := range issues {
		printWarning(w, "%s", issueLine(is))
	}
}

func issueLine(is host.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s [%s]", is.Kind, displayPath(is.Path), is.Code)
	if is.Field != "" {
		fmt.Fprintf(&b, " %s:", is.Field)
	}
	b.WriteString(" " + is.Message)
	return b.String()
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
