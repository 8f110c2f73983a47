package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/scenesync/pkg/replay"
	"github.com/matzehuels/scenesync/pkg/scene"
	"github.com/matzehuels/scenesync/pkg/sceneio"
)

func newTestExplore(t *testing.T) exploreModel {
	t.Helper()
	s, err := sceneio.Load(twoViews)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	sess, mounted, err := replay.NewSession(s, nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(sess.Close)
	return newExploreModel(sess, mounted, "two views")
}

func press(m exploreModel, keys ...string) exploreModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(exploreModel)
	}
	return m
}

func kSlice(t *testing.T, m exploreModel, path string) int {
	t.Helper()
	p, _ := m.Session.Scene().Props(path)
	rp := p.(scene.RepresentationProps)
	if rp.KSlice == nil {
		return -1
	}
	return *rp.KSlice
}

func TestExploreStep(t *testing.T) {
	m := press(newTestExplore(t), "n", "n")
	if got := m.Session.Scene().Applied(); got != 2 {
		t.Errorf("Applied() = %d, want 2", got)
	}
	if !strings.Contains(m.Status, "window") {
		t.Errorf("Status = %q", m.Status)
	}

	m = press(m, "n", "n", "n")
	if !strings.Contains(m.Status, "no frames left") {
		t.Errorf("Status = %q", m.Status)
	}

	m = press(m, "r")
	if got := m.Session.Scene().Applied(); got != 0 {
		t.Errorf("Applied() after reset = %d", got)
	}
}

func TestExploreSliceAndVisibility(t *testing.T) {
	m := newTestExplore(t)
	axial := "views/axial/ct"

	m = press(m, "+", "+")
	if got := kSlice(t, m, axial); got != 6 {
		t.Errorf("kSlice = %d, want 6", got)
	}
	m = press(m, "-")
	if got := kSlice(t, m, axial); got != 5 {
		t.Errorf("kSlice = %d, want 5", got)
	}

	m = press(m, "v")
	n, _ := m.Last.Snapshot.Node(axial)
	if n.Representation.Visible {
		t.Error("v did not hide the selected representation")
	}
	m = press(m, "v")
	n, _ = m.Last.Snapshot.Node(axial)
	if !n.Representation.Visible {
		t.Error("second v did not show it again")
	}

	m = press(m, "down", "down", "down")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
	m = press(m, "-")
	if got := kSlice(t, m, "views/coronal/ct"); got != 0 {
		t.Errorf("coronal kSlice = %d, want 0", got)
	}
	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
}

func TestExploreQuit(t *testing.T) {
	_, cmd := newTestExplore(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestExploreView(t *testing.T) {
	out := press(newTestExplore(t), "n").View()
	for _, want := range []string{"two views", "frame 1/4", "next: window", "views/axial/ct", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
