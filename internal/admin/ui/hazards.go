package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"

	"github.com/notepid/roadwatch/internal/admin/app"
	"github.com/notepid/roadwatch/internal/rewards"
)

type hazardsModel struct {
	app *app.App

	width  int
	height int

	Done bool

	list     list.Model
	selected *rewards.HazardReport
	names    map[int64]string
	err      error
}

type hazardItem struct {
	report rewards.HazardReport
	title  string
	desc   string
}

func (i hazardItem) Title() string       { return i.title }
func (i hazardItem) Description() string { return i.desc }
func (i hazardItem) FilterValue() string { return i.title }

func newHazardsModel(a *app.App) *hazardsModel {
	m := &hazardsModel{app: a}
	m.reload()
	return m
}

func (m *hazardsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *hazardsModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "esc" || k.String() == "enter" || k.String() == "q") {
			m.Done = true
		}
		return nil
	}

	if m.selected != nil {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "esc", "enter", "q":
				m.selected = nil
			}
		}
		return nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q", "esc":
			m.Done = true
			return nil
		case "r":
			m.reload()
			return nil
		case "enter":
			if it, ok := m.list.SelectedItem().(hazardItem); ok {
				report := it.report
				m.selected = &report
			}
			return nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *hazardsModel) View() string {
	if m.err != nil {
		return errStyle.Render("Hazards error: ") + m.err.Error() + "\n\nPress Enter/Esc to go back."
	}

	if h := m.selected; h != nil {
		return titleStyle.Render(fmt.Sprintf("Hazard #%d", h.ID)) + "\n\n" +
			fmt.Sprintf("Type: %s\nLocation: %s\nReported by: %s\nReported at: %s\nStatus: %s\n",
				h.HazardType, h.Location, m.reporter(h.UserID), h.Timestamp.Format("2006-01-02 15:04:05"), h.Status,
			) + "\n" + dimStyle.Render("(esc to go back)")
	}

	return m.list.View() + "\n(enter to view, r to refresh, q to go back)"
}

func (m *hazardsModel) reload() {
	ctx := m.app.Context()
	m.list = newList(nil, m.width, m.height-2, true)
	m.list.Title = "Hazards"

	users, err := m.app.Store.Users(ctx)
	if err != nil {
		m.err = err
		return
	}
	m.names = make(map[int64]string, len(users))
	for _, u := range users {
		m.names[u.ID] = u.Username
	}

	hazards, err := m.app.Store.Hazards(ctx)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(hazards))
	for _, h := range hazards {
		items = append(items, hazardItem{
			report: h,
			title:  fmt.Sprintf("%s @ %s", h.HazardType, h.Location),
			desc:   fmt.Sprintf("%s • %s", m.reporter(h.UserID), h.Timestamp.Format("2006-01-02 15:04")),
		})
	}

	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Hazards (%d)", len(hazards))
}

func (m *hazardsModel) reporter(id int64) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return fmt.Sprintf("user %d", id)
}
