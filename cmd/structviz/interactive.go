package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/incrstruct/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	tailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type vizState int

const (
	stateSelectStruct vizState = iota
	stateStepping
	stateEnterFail
)

type vizModel struct {
	err       error
	logger    *zap.Logger
	lf        *layoutFile
	sim       *simulation
	events    []event
	failInput textinput.Model
	failAt    string
	selected  int
	step      int
	shared    bool
	state     vizState
}

func newVizModel(lf *layoutFile, shared bool, logger *zap.Logger) *vizModel {
	ti := textinput.New()
	ti.Placeholder = "tail field name"
	ti.CharLimit = 64
	ti.Width = 24

	return &vizModel{
		lf:        lf,
		shared:    shared,
		logger:    logger,
		failInput: ti,
		state:     stateSelectStruct,
	}
}

func (m *vizModel) Init() tea.Cmd {
	return nil
}

func (m *vizModel) rebuild() {
	blk := m.lf.Structs[m.selected]
	sim, err := newSimulation(blk, m.shared, m.failAt)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.sim = sim
	m.events = sim.events()
	m.step = 0
	m.logger.Debug("simulation rebuilt",
		zap.String("struct", sim.name),
		zap.String("fail_at", m.failAt))
}

func (m *vizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.state {
	case stateSelectStruct:
		switch key.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.lf.Structs)-1 {
				m.selected++
			}
		case "enter":
			m.failAt = ""
			m.rebuild()
			if m.err == nil {
				m.state = stateStepping
			}
		}

	case stateStepping:
		switch key.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "n":
			if m.step < len(m.events) {
				m.step++
			}
		case "r":
			m.step = 0
		case "f":
			m.failInput.SetValue("")
			m.failInput.Focus()
			m.state = stateEnterFail
		case "b", "esc":
			m.state = stateSelectStruct
		}

	case stateEnterFail:
		switch key.String() {
		case "enter":
			m.failAt = strings.TrimSpace(m.failInput.Value())
			m.rebuild()
			m.state = stateStepping
		case "esc":
			m.state = stateStepping
		default:
			var cmd tea.Cmd
			m.failInput, cmd = m.failInput.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *vizModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("structviz — incremental construction"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectStruct:
		b.WriteString("Declared structs:\n\n")
		for i, s := range m.lf.Structs {
			line := fmt.Sprintf("  %s (%d fields)", s.Name, len(s.Fields))
			if i == m.selected {
				line = selectedStyle.Render("> " + line[2:])
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("up/down: select • enter: open • q: quit"))

	case stateStepping:
		m.viewStepping(&b)

	case stateEnterFail:
		m.viewStepping(&b)
		b.WriteString("\n\nFail at tail field: " + m.failInput.View())
		b.WriteString("\n" + helpStyle.Render("enter: apply • esc: cancel"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + failStyle.Render("Error: "+m.err.Error()))
	}
	return b.String()
}

func (m *vizModel) viewStepping(b *strings.Builder) {
	if m.sim == nil {
		return
	}

	fmt.Fprintf(b, "%s — %d bytes, align %d\n\n",
		m.sim.name, m.sim.comp.Size, m.sim.comp.Align)

	// Field table with the state each field has reached so far.
	states := m.fieldStates()
	for i, f := range m.sim.fields {
		style := headStyle
		if f.Role == layout.Tail {
			style = tailStyle
		}
		fmt.Fprintf(b, "  %s %-10s off=%-4d %s\n",
			style.Render(fmt.Sprintf("%-12s", f.Name)),
			f.Role, m.sim.comp.Offsets[i], states[i])
	}

	b.WriteString("\nTrace:\n")
	for i := 0; i < m.step && i < len(m.events); i++ {
		e := m.events[i]
		line := "  " + e.String()
		switch e.Kind {
		case evFail:
			line = failStyle.Render(line)
		case evDrop, evRelease:
			line = failStyle.Render(line)
		case evFinish:
			line = doneStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.step < len(m.events) {
		fmt.Fprintf(b, "  %s\n", helpStyle.Render(fmt.Sprintf("(%d steps remain)", len(m.events)-m.step)))
	}

	b.WriteString("\n" + helpStyle.Render("space: step • r: reset • f: inject failure • b: back • q: quit"))
}

// fieldStates folds the replayed trace prefix into a per-field label.
func (m *vizModel) fieldStates() []string {
	states := make([]string, len(m.sim.fields))
	for i := range states {
		states[i] = helpStyle.Render("pending")
	}
	for i := 0; i < m.step && i < len(m.events); i++ {
		e := m.events[i]
		switch e.Kind {
		case evWrite:
			states[e.Index] = doneStyle.Render("written")
		case evFail:
			states[e.Index] = failStyle.Render("failed")
		case evDrop:
			states[e.Index] = failStyle.Render("dropped")
		}
	}
	return states
}

func runInteractive(path string, shared bool, logger *zap.Logger) error {
	lf, err := loadLayouts(path)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newVizModel(lf, shared, logger), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
