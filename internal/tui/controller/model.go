package controller

import (
	"time"

	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"

	tea "github.com/charmbracelet/bubbletea"
)

// redrawTickMsg prompts the periodic redraw.
type redrawTickMsg time.Time

// panelUpdatedMsg is sent by a daemon panel after its data changes.
type panelUpdatedMsg struct {
	panel panel.Interface
}

// Model adapts a Controller to bubbletea.
type Model struct {
	c *Controller
}

// NewModel creates the bubbletea model for a controller.
func NewModel(c *Controller) Model {
	return Model{c: c}
}

func (m Model) tick() tea.Cmd {
	rate := m.c.opts.RedrawRate
	if rate <= 0 {
		rate = time.Second
	}
	return tea.Tick(rate, func(t time.Time) tea.Msg {
		return redrawTickMsg(t)
	})
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.c.Resize(msg.Width, msg.Height)
		m.c.Redraw(true)
		return m, nil

	case redrawTickMsg:
		m.c.Redraw(false)
		return m, m.tick()

	case panelUpdatedMsg:
		m.c.RedrawPanel(msg.panel)
		return m, nil

	case tea.KeyMsg:
		switch m.c.HandleKey(screen.FromKeyMsg(msg)) {
		case KeyQuit:
			return m, tea.Quit
		case KeyHandled:
			m.c.Redraw(true)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.c.screen.Render()
}

// NewProgram creates the bubbletea program for a controller, on the
// alternate screen.
func NewProgram(c *Controller, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(NewModel(c), opts...)
	c.AttachProgram(p)
	return p
}
