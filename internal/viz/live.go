package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/controldev/mracsim/internal/sim"
)

const liveHistory = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	haltStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type RecordMsg sim.Record

type DoneMsg struct{ Err error }

// Live shows a run as it streams. Records arrive on a channel fed by
// Simulator.Stream from a separate goroutine; closing the channel ends
// the stream and errs delivers the run's outcome.
type Live struct {
	scenario string
	records  <-chan sim.Record
	errs     <-chan error

	last     sim.Record
	errHist  []float64
	gainHist []float64
	steps    int
	done     bool
	runErr   error
	quitting bool
}

func NewLive(scenario string, records <-chan sim.Record, errs <-chan error) Live {
	return Live{
		scenario: scenario,
		records:  records,
		errs:     errs,
		errHist:  make([]float64, 0, liveHistory),
		gainHist: make([]float64, 0, liveHistory),
	}
}

func (m Live) wait() tea.Cmd {
	return func() tea.Msg {
		rec, ok := <-m.records
		if !ok {
			return DoneMsg{Err: <-m.errs}
		}
		return RecordMsg(rec)
	}
}

func (m Live) Init() tea.Cmd {
	return m.wait()
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case RecordMsg:
		m.last = sim.Record(msg)
		m.steps++
		m.errHist = append(m.errHist, errNorm(m.last))
		m.gainHist = append(m.gainHist, gainNorm(m.last))
		if len(m.errHist) > liveHistory {
			m.errHist = m.errHist[1:]
			m.gainHist = m.gainHist[1:]
		}
		return m, m.wait()

	case DoneMsg:
		m.done = true
		m.runErr = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Live) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("mracsim · "+m.scenario) + "\n")

	if len(m.errHist) > 1 {
		chart := asciigraph.Plot(m.errHist,
			asciigraph.Height(6), asciigraph.Width(60),
			asciigraph.Caption("tracking error norm"))
		s.WriteString(graphStyle.Render(chart) + "\n")

		chart = asciigraph.Plot(m.gainHist,
			asciigraph.Height(6), asciigraph.Width(60),
			asciigraph.Caption("gain norm"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.last.T)) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.steps)) + "\n")
	if len(m.last.U) > 0 {
		s.WriteString(labelStyle.Render("Control") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.U[0])) + "\n")
	}

	if m.done {
		if m.runErr != nil {
			s.WriteString("\n" + haltStyle.Render("halted: "+m.runErr.Error()) + "\n")
		} else {
			s.WriteString("\n" + valueStyle.Render("completed") + "\n")
		}
	}

	s.WriteString(helpStyle.Render("q quit"))
	return s.String()
}
