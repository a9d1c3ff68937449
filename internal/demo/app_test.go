package demo

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/navstack/pkg/middleware"
	"github.com/vango-dev/navstack/pkg/nav"
	"github.com/vango-dev/navstack/pkg/routegen"
	"github.com/vango-dev/navstack/pkg/store"
)

func newApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyMsg(k))
	}
	return cmd
}

func names(a *App) []string {
	keys := a.Stack().Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		name, _ := a.codec.Name(k)
		out[i] = name
	}
	return out
}

func assertStack(t *testing.T, a *App, want ...string) {
	t.Helper()
	got := names(a)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("stack = %v, want %v", got, want)
	}
}

func TestRoutesAreGenerated(t *testing.T) {
	pkg, err := routegen.NewScanner(".").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	code, err := routegen.NewGenerator(pkg, "").Generate()
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	onDisk, err := os.ReadFile(routegen.DefaultOutput)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(code, onDisk) {
		t.Errorf("routes_gen.go is stale, want:\n%s", code)
	}
	if Routes().Len() != len(pkg.Handlers) {
		t.Errorf("Routes().Len() = %d, want %d", Routes().Len(), len(pkg.Handlers))
	}
}

func TestNavigateAndBack(t *testing.T) {
	a := newApp(t, Config{})
	assertStack(t, a, "home")

	press(a, "p", "n")
	assertStack(t, a, "home", "profile", "profile")

	press(a, "esc")
	assertStack(t, a, "home", "profile")

	press(a, "esc", "esc")
	assertStack(t, a, "home")
	if a.status != "nothing to go back to" {
		t.Errorf("status = %q", a.status)
	}
}

func TestFinishAndReplaceAll(t *testing.T) {
	a := newApp(t, Config{})

	press(a, "p", "n", "n")
	assertStack(t, a, "home", "profile", "profile", "profile")

	press(a, "h")
	assertStack(t, a, "home")

	// f finishes profile 1 together with everything above it.
	press(a, "p", "n", "n", "f")
	assertStack(t, a, "home")
}

func TestPrivateProfileIsCancelled(t *testing.T) {
	a := newApp(t, Config{})
	a.ctrl.Go(Profile{ID: privateProfile - 1})

	press(a, "n")
	if top := a.Stack().Top().(Profile); top.ID != privateProfile-1 {
		t.Errorf("top = %+v, want profile %d", top, privateProfile-1)
	}
	if !strings.Contains(a.status, "private") {
		t.Errorf("status = %q", a.status)
	}
}

func TestSettingsRequireLogin(t *testing.T) {
	a := newApp(t, Config{})

	press(a, "s")
	assertStack(t, a, "home", "login")

	press(a, "enter")
	assertStack(t, a, "home")
	if !a.loggedIn {
		t.Fatal("enter on login should log in")
	}

	press(a, "s")
	assertStack(t, a, "home", "settings")
	if !strings.Contains(a.View(), "Dark mode") {
		t.Errorf("settings sheet not rendered:\n%s", a.View())
	}
}

func TestSettingsHolderLivesWithKey(t *testing.T) {
	a := newApp(t, Config{})
	a.loggedIn = true

	press(a, "s", "j")
	_, screen := a.render(a.Stack().Top())
	sheet := screen.(*SettingsModel)
	if sheet.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", sheet.cursor)
	}

	press(a, " ")
	if !a.theme.Compact {
		t.Error("space should toggle the selected setting")
	}

	press(a, "esc")
	if !sheet.Cleared() {
		t.Error("holder should be cleared once Settings leaves the stack")
	}

	press(a, "s")
	_, screen = a.render(a.Stack().Top())
	if screen.(*SettingsModel).cursor != 0 {
		t.Error("reopened settings should start with a fresh holder")
	}
}

func TestAskNameDeliversResult(t *testing.T) {
	a := newApp(t, Config{})

	press(a, "n")
	assertStack(t, a, "home", "ask-name")
	if !strings.Contains(a.View(), "What is your name?") {
		t.Errorf("dialog not rendered:\n%s", a.View())
	}

	press(a, "A", "d", "x", "backspace", "a", "enter")
	assertStack(t, a, "home")
	if a.greeting != "Hello, Ada" {
		t.Errorf("greeting = %q", a.greeting)
	}
	if !strings.Contains(a.View(), "Hello, Ada") {
		t.Errorf("greeting not rendered:\n%s", a.View())
	}
}

func TestAskNameCancelled(t *testing.T) {
	a := newApp(t, Config{})

	press(a, "n", "B", "o", "esc")
	assertStack(t, a, "home")
	if a.greeting != "" {
		t.Errorf("greeting = %q, want none after esc", a.greeting)
	}
}

func TestDebounce(t *testing.T) {
	a := newApp(t, Config{Debounce: time.Hour})

	press(a, "p", "esc", "p")
	assertStack(t, a, "home")
	if a.status != "navigating too fast" {
		t.Errorf("status = %q", a.status)
	}
}

func TestQuitSavesAndRestores(t *testing.T) {
	mem := store.NewMemory()
	a := newApp(t, Config{Store: mem})
	press(a, "p", "n")

	if cmd := press(a, "ctrl+c"); cmd == nil {
		t.Fatal("ctrl+c should return tea.Quit")
	}

	b := newApp(t, Config{Store: mem})
	assertStack(t, b, "home", "profile", "profile")
	if top := b.Stack().Top().(Profile); top.ID != 2 {
		t.Errorf("restored top = %+v", top)
	}
}

func TestCorruptSnapshotStartsFresh(t *testing.T) {
	mem := store.NewMemory()
	if err := mem.Save(context.Background(), DefaultStackID, []byte(`{"version":1,"keys":[{"type":"gone","data":{}}]}`)); err != nil {
		t.Fatal(err)
	}
	a := newApp(t, Config{Store: mem})
	assertStack(t, a, "home")
}

func TestMetricsAndObservers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.Metrics(middleware.WithRegistry(reg))
	a := newApp(t, Config{
		Reporters: []nav.Reporter{metrics},
		Observers: []nav.OwnerObserver{metrics},
	})

	press(a, "p", "esc")
	expected := `
# HELP navstack_events_total Total number of navigation events
# TYPE navstack_events_total counter
navstack_events_total{action="back",kind="popped"} 1
navstack_events_total{action="go",kind="pushed"} 1
# HELP navstack_owners Number of owners with an attached stack
# TYPE navstack_owners gauge
navstack_owners 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "navstack_events_total", "navstack_owners"); err != nil {
		t.Error(err)
	}
	if a.ID() == "" {
		t.Error("app should have an owner id")
	}
}

func TestViewBreadcrumb(t *testing.T) {
	a := newApp(t, Config{})
	a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	press(a, "p", "n", "n")

	if view := a.View(); !strings.Contains(view, "Home › Profile 1 › Profile 2 › Profile 3") {
		t.Errorf("breadcrumb missing:\n%s", view)
	}

	a.theme.Compact = true
	if view := a.View(); !strings.Contains(view, "Home › … › Profile 3 (4)") {
		t.Errorf("compact breadcrumb missing:\n%s", view)
	}
}
