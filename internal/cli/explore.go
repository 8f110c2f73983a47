package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenesync/pkg/inspect"
	"github.com/matzehuels/scenesync/pkg/replay"
	"github.com/matzehuels/scenesync/pkg/scene"
	"github.com/matzehuels/scenesync/pkg/sceneio"
)

var (
	exploreHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	exploreFrameStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <scene.toml>",
		Short: "Step through a scene interactively",
		Long: `Mount a scene and drive it from the keyboard.

Frames are applied one at a time. The selected representation's k slice and
visibility can be changed on the fly; every change re-renders the whole
scene description and shows the resulting state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sceneio.Load(args[0])
			if err != nil {
				return err
			}
			sess, mounted, err := replay.NewSession(s, c.Logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			p := tea.NewProgram(newExploreModel(sess, mounted, args[0]),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// exploreModel - Interactive scene stepping
// =============================================================================

// exploreModel is the bubbletea model for "scenesync explore".
type exploreModel struct {
	Session *replay.Session
	Title   string
	Cursor  int
	Last    replay.FrameResult
	Status  string
	Err     error
}

func newExploreModel(sess *replay.Session, mounted replay.FrameResult, title string) exploreModel {
	return exploreModel{Session: sess, Title: title, Last: mounted}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	reps := m.Last.Snapshot.Representations()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(reps)-1 {
			m.Cursor++
		}
	case "n", " ", "enter":
		fr, ok, err := m.Session.Step()
		switch {
		case err != nil:
			m.Err = err
		case !ok:
			m.Status = "no frames left, press r to reset"
		default:
			m.show(fr, "applied "+frameTitle(fr))
		}
	case "+", "=":
		m.moveSlice(reps, 1)
	case "-":
		m.moveSlice(reps, -1)
	case "v":
		if len(reps) > 0 {
			r := reps[m.Cursor]
			m.apply(r.Path, fmt.Sprintf("actor = { visibility = %t }", !r.Representation.Requested))
		}
	case "r":
		fr, err := m.Session.Reset()
		if err != nil {
			m.Err = err
		} else {
			m.show(fr, "reset")
		}
	}
	return m, nil
}

// moveSlice shifts the k slice of the selected representation.
func (m *exploreModel) moveSlice(reps []inspect.Node, delta int) {
	if len(reps) == 0 {
		return
	}
	target := reps[m.Cursor].Path
	k := 0
	if p, ok := m.Session.Scene().Props(target); ok {
		if rp, ok := p.(scene.RepresentationProps); ok && rp.KSlice != nil {
			k = *rp.KSlice
		}
	}
	m.apply(target, fmt.Sprintf("kSlice = %d", max(k+delta, 0)))
}

func (m *exploreModel) apply(target, props string) {
	fr, err := m.Session.Apply(target, props)
	if err != nil {
		m.Err = err
		return
	}
	m.show(fr, fmt.Sprintf("%s: %s", target, props))
}

func (m *exploreModel) show(fr replay.FrameResult, status string) {
	m.Last, m.Status, m.Err = fr, status, nil
	if n := len(fr.Snapshot.Representations()); m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	s := m.Session.Scene()
	b.WriteString(styleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(exploreFrameStyle.Render(fmt.Sprintf("frame %d/%d", s.Applied(), len(s.Frames()))))
	if !s.Done() {
		next := s.Frames()[s.Applied()]
		b.WriteString(exploreHelpStyle.Render(fmt.Sprintf("  next: %s %s %s", next.Name, iconArrow, displayPath(next.Target))))
	}
	b.WriteString("\n\n")

	b.WriteString(stateTable(m.Last.Snapshot, m.Cursor))
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error() + "\n")
	} else if m.Status != "" {
		b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.Status + "\n")
	}
	for _, is := range m.Last.Issues {
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(issueLine(is)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render("↑/↓ select  n next frame  +/- k slice  v visibility  r reset  q quit"))
	return b.String()
}
