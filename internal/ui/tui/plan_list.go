// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/klauern/photosync/internal/plan"
)

// PlanAction represents the outcome of the plan review.
type PlanAction int

const (
	// PlanActionNone means no action was taken (user quit).
	PlanActionNone PlanAction = iota
	// PlanActionApply means the user confirmed the selected operations.
	PlanActionApply
)

// PlanListResult contains the result of the plan review interaction.
type PlanListResult struct {
	Action   PlanAction
	Selected plan.Plan
}

// planListKeyMap defines the key bindings for the plan review list.
type planListKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Confirm   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultPlanListKeyMap() planListKeyMap {
	return planListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "tab"),
			key.WithHelp("space/tab", "toggle"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "apply selected"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Styles for the plan review TUI.
var planListStyles = struct {
	Title   lipgloss.Style
	Help    lipgloss.Style
	Confirm lipgloss.Style
	Status  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Confirm: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Padding(1, 2),
	Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
}

const (
	planListCheckboxWidth = 3
	planListVerbWidth     = 16
	planListPathWidth     = 40
)

// PlanListModel is the BubbleTea model for interactive plan review.
// Operations are listed in plan order and all start selected; deselecting
// an operation drops it from the applied plan.
type PlanListModel struct {
	table       table.Model
	ops         plan.Plan
	selected    []bool
	keys        planListKeyMap
	result      PlanListResult
	showHelp    bool
	confirmMode bool
	quitting    bool
}

func planListColumns(totalWidth int) []table.Column {
	pathWidth := planListPathWidth
	if totalWidth > 0 {
		extra := totalWidth - planListCheckboxWidth - planListVerbWidth - 2*planListPathWidth - 8
		if extra > 0 {
			pathWidth += extra / 2
		}
	}
	return []table.Column{
		{Title: " ", Width: planListCheckboxWidth},
		{Title: "Action", Width: planListVerbWidth},
		{Title: "From", Width: pathWidth},
		{Title: "To", Width: pathWidth},
	}
}

// NewPlanListModel creates a plan review model over the given plan.
func NewPlanListModel(p plan.Plan) PlanListModel {
	selected := make([]bool, len(p))
	for i := range selected {
		selected[i] = true
	}

	m := PlanListModel{
		ops:      p,
		selected: selected,
		keys:     defaultPlanListKeyMap(),
	}

	t := table.New(
		table.WithColumns(planListColumns(0)),
		table.WithRows(m.opsToRows()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	return m
}

func (m PlanListModel) opsToRows() []table.Row {
	rows := make([]table.Row, len(m.ops))
	for i, op := range m.ops {
		checkbox := "[ ]"
		if m.selected[i] {
			checkbox = "[✓]"
		}
		rows[i] = table.Row{
			checkbox,
			string(op.Kind),
			truncatePath(op.From, planListPathWidth),
			truncatePath(op.To, planListPathWidth),
		}
	}
	return rows
}

func truncatePath(value string, width int) string {
	if len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	// Keep the tail: the file name matters more than the leading dirs.
	return "..." + value[len(value)-width+3:]
}

// SelectedPlan returns the operations still selected, in plan order.
// Deselecting a move keeps its dependent removals valid because removals
// reference the kept path, which exists in the target either way.
func (m PlanListModel) SelectedPlan() plan.Plan {
	var p plan.Plan
	for i, op := range m.ops {
		if m.selected[i] {
			p = append(p, op)
		}
	}
	return p
}

// Init implements tea.Model.
func (m PlanListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		newHeight := max(msg.Height-8, 5)
		m.table.SetHeight(newHeight)
		m.table.SetColumns(planListColumns(msg.Width))
		m.table.SetRows(m.opsToRows())

	case tea.KeyMsg:
		if m.confirmMode {
			switch msg.String() {
			case "y", "Y":
				m.result = PlanListResult{
					Action:   PlanActionApply,
					Selected: m.SelectedPlan(),
				}
				m.quitting = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.confirmMode = false
				return m, nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			cursor := m.table.Cursor()
			if cursor >= 0 && cursor < len(m.ops) {
				m.selected[cursor] = !m.selected[cursor]
				m.table.SetRows(m.opsToRows())
			}
			return m, nil

		case key.Matches(msg, m.keys.ToggleAll):
			selectedCount := 0
			for _, s := range m.selected {
				if s {
					selectedCount++
				}
			}
			selectAll := selectedCount < len(m.selected)/2+1
			for i := range m.selected {
				m.selected[i] = selectAll
			}
			m.table.SetRows(m.opsToRows())
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if len(m.SelectedPlan()) > 0 {
				m.confirmMode = true
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m PlanListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(planListStyles.Title.Render("Review reconciliation plan"))
	b.WriteString("\n\n")

	if m.confirmMode {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		confirmMsg := fmt.Sprintf("Apply %d operation(s)? (y/n)", len(m.SelectedPlan()))
		b.WriteString(planListStyles.Confirm.Render(confirmMsg))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	status := fmt.Sprintf("%d operation(s) selected of %d", len(m.SelectedPlan()), len(m.ops))
	b.WriteString(planListStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m PlanListModel) renderShortHelp() string {
	keys := []string{
		"↑/↓ navigate",
		"space toggle",
		"a toggle all",
		"y apply",
		"? help",
		"q quit",
	}
	return planListStyles.Help.Render(strings.Join(keys, " • "))
}

func (m PlanListModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Selection:
  Space/Tab  Toggle current operation
  a          Toggle all operations

Actions:
  y        Confirm and apply selected operations

General:
  ?        Toggle full help
  q        Quit without applying`
	return planListStyles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m PlanListModel) Result() PlanListResult {
	return m.result
}

// RunPlanList runs the interactive plan review and returns the result.
func RunPlanList(p plan.Plan) (PlanListResult, error) {
	if p.Empty() {
		return PlanListResult{}, nil
	}

	mdl := NewPlanListModel(p)
	finalModel, err := tea.NewProgram(mdl, tea.WithAltScreen()).Run()
	if err != nil {
		return PlanListResult{}, err
	}

	if m, ok := finalModel.(PlanListModel); ok {
		return m.Result(), nil
	}

	return PlanListResult{}, nil
}
