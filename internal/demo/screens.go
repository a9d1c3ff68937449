package demo

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/navstack/pkg/nav"
	"github.com/vango-dev/navstack/pkg/registry"
)

// Screen is what every route renders to.
type Screen interface {
	// Title names the screen in the breadcrumb.
	Title() string
	View(app *App) string
	Help() string
	// Update handles a key the host did not consume.
	Update(app *App, msg tea.KeyMsg) tea.Cmd
}

//nav:route Home
func HomeScreen() Screen { return homeScreen{} }

//nav:route Profile
func ProfileScreen(p Profile) Screen { return profileScreen{key: p} }

//nav:route Login
func LoginScreen() Screen { return loginScreen{} }

//nav:route Settings bottom-sheet
func SettingsSheet(m *SettingsModel) Screen { return m }

//nav:route *AskName modal
func AskNameDialog(m *AskNameModel) Screen { return m }

type homeScreen struct{}

func (homeScreen) Title() string { return "Home" }

func (homeScreen) View(app *App) string {
	text := "Welcome to navdemo.\n\nEvery screen you open is pushed on the stack shown above."
	if app.greeting != "" {
		text = app.greeting + "\n\n" + text
	}
	return text
}

func (homeScreen) Help() string {
	return "p profile • s settings • n ask name • l log out • q quit"
}

func (homeScreen) Update(app *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "p":
		app.note(app.ctrl.Go(Profile{ID: 1}))
	case "s":
		app.note(app.ctrl.Go(Settings{}))
	case "n":
		app.note(nav.GoResult(app.ctrl, &AskName{Prompt: "What is your name?"}, func(name string) {
			app.greeting = "Hello, " + name
		}))
	case "l":
		app.loggedIn = false
		app.status = "logged out"
	case "q":
		return app.quit()
	}
	return nil
}

type profileScreen struct {
	key Profile
}

func (s profileScreen) Title() string { return fmt.Sprintf("Profile %d", s.key.ID) }

func (s profileScreen) View(*App) string {
	return fmt.Sprintf("User #%d\n\nProfile %d is private.", s.key.ID, privateProfile)
}

func (profileScreen) Help() string {
	return "n next • f close all profiles • h home • esc back"
}

func (s profileScreen) Update(app *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		app.note(app.ctrl.Go(Profile{ID: s.key.ID + 1}))
	case "f":
		app.note(app.ctrl.Finish(Profile{ID: 1}, true))
	case "h":
		app.note(app.ctrl.GoReplaceAll(Home{}))
	}
	return nil
}

type loginScreen struct{}

func (loginScreen) Title() string { return "Login" }

func (loginScreen) View(*App) string {
	return "Settings need a login."
}

func (loginScreen) Help() string { return "enter log in • esc back" }

func (loginScreen) Update(app *App, msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		app.loggedIn = true
		app.note(app.ctrl.Finish(Login{}, false))
		app.status = "logged in"
	}
	return nil
}

// SettingsModel keeps the sheet's cursor while Settings is on the stack.
type SettingsModel struct {
	registry.Holder[Settings]
	cursor int
}

func NewSettingsModel(k Settings) *SettingsModel {
	return &SettingsModel{Holder: registry.MakeHolder(k)}
}

var settingNames = []string{"Dark mode", "Compact breadcrumb"}

func (m *SettingsModel) Title() string { return "Settings" }

func (m *SettingsModel) View(app *App) string {
	var sb strings.Builder
	for i, name := range settingNames {
		cursor := "  "
		if i == m.cursor {
			cursor = "→ "
		}
		fmt.Fprintf(&sb, "%s[%s] %s\n", cursor, mark(app.theme.setting(i)), name)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m *SettingsModel) Help() string { return "j/k move • space toggle • esc close" }

func (m *SettingsModel) Update(app *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(settingNames)-1)
	case "k", "up":
		m.cursor = max(m.cursor-1, 0)
	case " ", "space":
		switch m.cursor {
		case 0:
			app.theme.Dark = !app.theme.Dark
		case 1:
			app.theme.Compact = !app.theme.Compact
		}
	}
	return nil
}

func mark(on bool) string {
	if on {
		return "x"
	}
	return " "
}

// AskNameModel holds the text typed into the dialog so far.
type AskNameModel struct {
	registry.Holder[*AskName]
	input string
}

func NewAskNameModel(k *AskName) *AskNameModel {
	return &AskNameModel{Holder: registry.MakeHolder(k)}
}

func (m *AskNameModel) Title() string { return "Name" }

func (m *AskNameModel) View(*App) string {
	return m.Key().Prompt + "\n\n> " + m.input + "█"
}

func (m *AskNameModel) Help() string { return "enter submit • esc cancel" }

func (m *AskNameModel) Update(app *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if m.input != "" {
			app.note(nav.FinishResult(app.ctrl, m.Key(), m.input))
		}
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return nil
}
