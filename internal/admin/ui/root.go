package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/notepid/roadwatch/internal/admin/app"
)

type screen int

const (
	screenHome screen = iota
	screenUsers
	screenHazards
	screenCatalog
)

type rootModel struct {
	app *app.App

	width  int
	height int

	active screen

	homeList list.Model

	users   *usersModel
	hazards *hazardsModel
	catalog *catalogModel
}

type menuItem struct {
	title string
	desc  string
	to    screen
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func NewRootModel(a *app.App) tea.Model {
	items := []list.Item{
		menuItem{title: "Users", desc: "Accounts, points and redemptions", to: screenUsers},
		menuItem{title: "Hazards", desc: "Reported road hazards, newest first", to: screenHazards},
		menuItem{title: "Rewards Catalog", desc: "Rewards users can redeem", to: screenCatalog},
		menuItem{title: "Quit", desc: "Exit", to: -1},
	}

	l := newList(items, 0, 0, false)
	l.Title = "Roadwatch Admin"

	return &rootModel{
		app:      a,
		active:   screenHome,
		homeList: l,
	}
}

func (m *rootModel) Init() tea.Cmd {
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.homeList.SetSize(msg.Width, msg.Height-2)
		if m.users != nil {
			m.users.SetSize(msg.Width, msg.Height)
		}
		if m.hazards != nil {
			m.hazards.SetSize(msg.Width, msg.Height)
		}
		if m.catalog != nil {
			m.catalog.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	switch m.active {
	case screenHome:
		return m.updateHome(msg)
	case screenUsers:
		m.activate(screenUsers)
		cmd := m.users.Update(msg)
		if m.users.Done {
			m.active = screenHome
			m.users = nil
		}
		return m, cmd
	case screenHazards:
		m.activate(screenHazards)
		cmd := m.hazards.Update(msg)
		if m.hazards.Done {
			m.active = screenHome
			m.hazards = nil
		}
		return m, cmd
	case screenCatalog:
		m.activate(screenCatalog)
		cmd := m.catalog.Update(msg)
		if m.catalog.Done {
			m.active = screenHome
			m.catalog = nil
		}
		return m, cmd
	default:
		return m, nil
	}
}

func (m *rootModel) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.homeList, cmd = m.homeList.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if it, ok := m.homeList.SelectedItem().(menuItem); ok {
				if it.to == -1 {
					return m, tea.Quit
				}
				m.activate(it.to)
				return m, nil
			}
		case "q":
			return m, tea.Quit
		}
	}

	return m, cmd
}

func (m *rootModel) activate(s screen) {
	m.active = s

	switch s {
	case screenUsers:
		if m.users == nil {
			m.users = newUsersModel(m.app)
			m.users.SetSize(m.width, m.height)
		}
	case screenHazards:
		if m.hazards == nil {
			m.hazards = newHazardsModel(m.app)
			m.hazards.SetSize(m.width, m.height)
		}
	case screenCatalog:
		if m.catalog == nil {
			m.catalog = newCatalogModel()
			m.catalog.SetSize(m.width, m.height)
		}
	}
}

func (m *rootModel) View() string {
	switch m.active {
	case screenHome:
		return m.homeList.View()
	case screenUsers:
		if m.users == nil {
			return "Loading users..."
		}
		return m.users.View()
	case screenHazards:
		if m.hazards == nil {
			return "Loading hazards..."
		}
		return m.hazards.View()
	case screenCatalog:
		if m.catalog == nil {
			return "Loading catalog..."
		}
		return m.catalog.View()
	default:
		return titleStyle.Render("Unknown screen") + "\n" + fmt.Sprint(m.active)
	}
}
