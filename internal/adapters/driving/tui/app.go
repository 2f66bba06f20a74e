package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/views/ask"
)

// Options configure a new App.
type Options struct {
	// ConversationID continues an existing conversation; empty starts a new one.
	ConversationID string

	// Answer composes an answer for every question.
	Answer bool
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports   *Ports
	ctx     context.Context
	styles  *styles.Styles
	askView *ask.View

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	view := ask.NewView(s, keymap.DefaultKeyMap(), ports.Query, ports.History, opts.ConversationID)
	view.SetAnswerMode(opts.Answer)

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		askView: view,
	}, nil
}

// WithContext sets the context passed to the query service.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("filings"),
		a.askView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case messages.Quit:
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.askView, cmd = a.askView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.askView.View()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// ConversationID returns the conversation the TUI is writing to.
func (a *App) ConversationID() string {
	return a.askView.ConversationID()
}

// AskView returns the ask view.
func (a *App) AskView() *ask.View {
	return a.askView
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.askView.SetDimensions(width, height)
}
