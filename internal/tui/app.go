package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vendormap/internal/config"
	"vendormap/internal/engine"
	"vendormap/internal/tui/views"
)

// App is the root bubbletea model. The dashboard is the only screen; the app
// just handles sizing and placement around it.
type App struct {
	dashboard views.DashboardModel
	width     int
	height    int
}

func NewApp(e *engine.Engine, cfg *config.Config) App {
	return App{dashboard: views.NewDashboardModel(e, cfg)}
}

func (a App) Init() tea.Cmd {
	return a.dashboard.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = size.Width
		a.height = size.Height
	}

	m, cmd := a.dashboard.Update(msg)
	a.dashboard = m.(views.DashboardModel)
	return a, cmd
}

func (a App) View() string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Left, lipgloss.Top,
		a.dashboard.View(),
	)
}

// Run starts the TUI over an already-built engine.
func Run(e *engine.Engine, cfg *config.Config) error {
	p := tea.NewProgram(NewApp(e, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
