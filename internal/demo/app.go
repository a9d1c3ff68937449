// Package demo is a terminal host for the navigation stack: every screen
// is a generated route, every key press that navigates goes through the
// controller, and the stack survives restarts through a store.
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/navstack/pkg/interceptors"
	"github.com/vango-dev/navstack/pkg/keycodec"
	"github.com/vango-dev/navstack/pkg/nav"
	"github.com/vango-dev/navstack/pkg/registry"
	"github.com/vango-dev/navstack/pkg/store"
)

// DefaultStackID names the saved snapshot when Config.StackID is empty.
const DefaultStackID = "main"

const (
	defaultWidth   = 80
	privateProfile = 13
)

// Config wires an App.
type Config struct {
	// Store persists the stack between runs. Nil disables persistence.
	Store   store.Store
	StackID string
	Logger  *slog.Logger

	// Debounce rejects a repeated push of the same key within the
	// interval. Zero disables it.
	Debounce time.Duration

	Reporters []nav.Reporter
	Observers []nav.OwnerObserver
}

type theme struct {
	Dark    bool
	Compact bool
}

func (t theme) setting(i int) bool {
	if i == 0 {
		return t.Dark
	}
	return t.Compact
}

// App is the bubbletea model of the demo.
type App struct {
	cfg     Config
	logger  *slog.Logger
	codec   *keycodec.Codec
	routes  *registry.Registry[Screen]
	holders *registry.HolderStore

	ctrl      *nav.Controller
	stack     *nav.Stack
	id        string
	unobserve func()

	loggedIn bool
	greeting string
	status   string
	theme    theme
	width    int
}

// New builds the app and restores the saved stack, if any. A snapshot that
// cannot be decoded is logged and replaced by a fresh stack.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.StackID == "" {
		cfg.StackID = DefaultStackID
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		codec:   NewCodec(),
		routes:  Routes(),
		holders: registry.NewHolderStore(),
	}

	stack, err := a.restore(ctx)
	if err != nil {
		return nil, err
	}
	a.stack = stack

	opts := []nav.Option{
		nav.WithLogger(logger),
		nav.WithTransportable(a.codec.Transportable),
		nav.WithReporter(cfg.Reporters...),
	}
	for _, o := range cfg.Observers {
		opts = append(opts, nav.WithOwnerObserver(o))
	}
	a.ctrl = nav.New(opts...)

	a.ctrl.AddInterceptor(interceptors.Logging(logger))
	if cfg.Debounce > 0 {
		a.ctrl.AddInterceptor(interceptors.OnlyActions(interceptors.Debounce(cfg.Debounce), nav.ActionGo))
	}
	requireLogin := interceptors.RequireLogin(func() bool { return a.loggedIn }, Login{})
	a.ctrl.AddInterceptor(interceptors.ForKey(func(k Settings, action nav.Action) nav.Decision {
		return requireLogin.Intercept(k, action)
	}))
	a.ctrl.AddInterceptor(interceptors.Permission(func(k nav.Key) bool {
		p, ok := k.(Profile)
		return !ok || p.ID != privateProfile
	}, fmt.Sprintf("profile %d is private", privateProfile)))

	a.unobserve = stack.Observe(a.holders.Sync)
	a.id = a.ctrl.Attach(nav.OwnerOf(a), stack)
	return a, nil
}

func (a *App) restore(ctx context.Context) (*nav.Stack, error) {
	if a.cfg.Store == nil {
		return nav.NewStack(Home{}), nil
	}
	stack, err := store.RestoreStack(ctx, a.cfg.Store, a.codec, a.cfg.StackID, Home{})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger.Warn("discarding saved stack", "id", a.cfg.StackID, "error", err)
		return nav.NewStack(Home{}), nil
	}
	return stack, nil
}

// Controller returns the app's controller.
func (a *App) Controller() *nav.Controller { return a.ctrl }

// Stack returns the app's stack.
func (a *App) Stack() *nav.Stack { return a.stack }

// ID returns the owner id the controller assigned to the app.
func (a *App) ID() string { return a.id }

// Save writes the current stack to the store.
func (a *App) Save(ctx context.Context) error {
	if a.cfg.Store == nil {
		return nil
	}
	return store.SaveStack(ctx, a.cfg.Store, a.codec, a.cfg.StackID, a.stack.Keys())
}

// Close detaches the app from its controller.
func (a *App) Close() {
	a.unobserve()
	a.ctrl.Detach(nav.OwnerOf(a))
}

func (a *App) quit() tea.Cmd {
	if err := a.Save(context.Background()); err != nil {
		a.logger.Warn("saving stack failed", "id", a.cfg.StackID, "error", err)
	}
	return tea.Quit
}

// note turns a rejected outcome into the status line.
func (a *App) note(out nav.Outcome) {
	switch out.Status {
	case nav.StatusCancelled:
		a.status = out.Reason
	case nav.StatusDuplicateTop:
		a.status = "already there"
	case nav.StatusLastEntry:
		a.status = "nothing to go back to"
	case nav.StatusNotTransportable, nav.StatusNotFound, nav.StatusNoStack, nav.StatusInvalidKey:
		a.status = out.Status.String()
	}
}

func (a *App) render(key nav.Key) (registry.Presentation, Screen) {
	p, s, err := a.routes.Render(key, a.holders)
	if err != nil {
		a.logger.Error("rendering failed", "key", nav.TypeName(key), "error", err)
		return registry.Plain, missingScreen{name: nav.TypeName(key)}
	}
	return p, s
}

func (a *App) top() Screen {
	if a.stack.Len() == 0 {
		a.note(a.ctrl.GoReplaceAll(Home{}))
	}
	_, s := a.render(a.stack.Top())
	return s
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
	case tea.KeyMsg:
		a.status = ""
		switch msg.String() {
		case "ctrl+c":
			return a, a.quit()
		case "esc":
			a.note(a.ctrl.Back())
			return a, nil
		}
		return a, a.top().Update(a, msg)
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	keys := a.stack.Keys()
	if len(keys) == 0 {
		return "empty stack\n"
	}
	width := a.width
	if width <= 0 {
		width = defaultWidth
	}
	st := newStyles(a.theme)

	presentation, screen := a.render(keys[len(keys)-1])
	base := screen
	if presentation != registry.Plain {
		for i := len(keys) - 2; i >= 0; i-- {
			if p, s := a.render(keys[i]); p == registry.Plain {
				base = s
				break
			}
		}
	}

	var body string
	switch presentation {
	case registry.Modal:
		body = lipgloss.JoinVertical(lipgloss.Left,
			st.faint.Width(width-2).Render(base.View(a)),
			"",
			lipgloss.PlaceHorizontal(width, lipgloss.Center, st.modal.Render(screen.View(a))),
		)
	case registry.BottomSheet:
		body = lipgloss.JoinVertical(lipgloss.Left,
			st.faint.Width(width-2).Render(base.View(a)),
			"",
			st.sheet.Width(width-2).Render(screen.View(a)),
		)
	default:
		body = st.body.Width(width - 2).Render(screen.View(a))
	}

	parts := []string{st.crumb.Render(a.breadcrumb(keys)), body}
	if a.status != "" {
		parts = append(parts, st.status.Render(a.status))
	}
	parts = append(parts, st.help.Render(screen.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (a *App) breadcrumb(keys []nav.Key) string {
	titles := make([]string, len(keys))
	for i, k := range keys {
		_, s := a.render(k)
		titles[i] = s.Title()
	}
	if a.theme.Compact && len(titles) > 2 {
		return fmt.Sprintf("%s › … › %s (%d)", titles[0], titles[len(titles)-1], len(titles))
	}
	return strings.Join(titles, " › ")
}

type missingScreen struct {
	name string
}

func (s missingScreen) Title() string { return s.name }

func (s missingScreen) View(*App) string { return "no route for " + s.name }

func (missingScreen) Help() string { return "esc back" }

func (missingScreen) Update(*App, tea.KeyMsg) tea.Cmd { return nil }
