package main

import (
	"fmt"
	"strings"

	"celltab/cmd/celltab/prim"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse primitives interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			p := tea.NewProgram(newBrowseModel(reg), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

type browseState int

const (
	stateList browseState = iota
	stateDetail
)

// kindFilters is the cycle of views the tab key steps through; nil shows all.
var kindFilters = []*prim.Kind{nil, kindPtr(prim.Combinational), kindPtr(prim.Latch), kindPtr(prim.FlipFlop)}

func kindPtr(k prim.Kind) *prim.Kind { return &k }

type browseModel struct {
	table  table.Model
	reg    *prim.Registry
	shown  []*prim.Primitive
	filter int
	state  browseState
}

func newBrowseModel(reg *prim.Registry) browseModel {
	columns := []table.Column{
		{Title: "NAME", Width: 10},
		{Title: "KIND", Width: 13},
		{Title: "OUTPUTS", Width: 9},
		{Title: "INPUTS", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("99"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := browseModel{table: t, reg: reg}
	m.applyFilter()
	return m
}

func (m *browseModel) applyFilter() {
	if k := kindFilters[m.filter]; k != nil {
		m.shown = m.reg.ByKind(*k)
	} else {
		m.shown = m.reg.All()
	}
	m.table.SetRows(toRows(m.shown))
	m.table.SetCursor(0)
}

func toRows(prims []*prim.Primitive) []table.Row {
	rows := make([]table.Row, len(prims))
	for i, p := range prims {
		rows[i] = table.Row{
			p.Name(),
			p.Kind().String(),
			strings.Join(p.Outputs(), ","),
			strings.Join(p.Inputs(), ","),
		}
	}
	return rows
}

func (m browseModel) selected() *prim.Primitive {
	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.shown) {
		return m.shown[idx]
	}
	return nil
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateDetail {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "backspace":
				m.state = stateList
			}
		}
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.selected() != nil {
				m.state = stateDetail
			}
			return m, nil
		case "tab":
			m.filter = (m.filter + 1) % len(kindFilters)
			m.applyFilter()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	label := "all"
	if k := kindFilters[m.filter]; k != nil {
		label = k.String()
	}
	title := styleTitle.Render(fmt.Sprintf("CELLTAB  [%s]  %d primitives", label, len(m.shown)))
	tableView := styleBase.Render(m.table.View())

	if m.state == stateDetail {
		if p := m.selected(); p != nil {
			help := styleHelp.Render("esc  back    q  quit")
			return title + "\n" + tableView + "\n" + styleOverlay.Render(describe(p)) + "\n" + help
		}
	}

	help := styleHelp.Render(styleKey.Render("↑/↓") + " navigate    " +
		styleKey.Render("enter") + " details    " +
		styleKey.Render("tab") + " kind    " +
		styleKey.Render("q") + " quit")
	return title + "\n" + tableView + "\n" + help
}
