package ui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"

	"github.com/notepid/roadwatch/internal/admin/app"
	"github.com/notepid/roadwatch/internal/rewards"
	"github.com/notepid/roadwatch/internal/user"
)

type usersModel struct {
	app *app.App

	width  int
	height int

	Done bool

	state usersState

	list list.Model
	err  error

	selected     *user.User
	speedSamples int
	redemptions  []rewards.Redemption
	notice       string

	form *huh.Form

	createUsername string
	createPassword string
	createEmail    string
	createSave     bool

	newPassword string
	pwConfirm   string
	pwSave      bool

	rewardChoice string
	redeemSave   bool
}

type usersState int

const (
	usersStateList usersState = iota
	usersStateDetail
	usersStateCreate
	usersStateResetPassword
	usersStateRedeem
)

type userItem struct {
	id    int64
	title string
	desc  string
	kind  string
}

func (i userItem) Title() string       { return i.title }
func (i userItem) Description() string { return i.desc }
func (i userItem) FilterValue() string { return i.title }

func newUsersModel(a *app.App) *usersModel {
	m := &usersModel{app: a, state: usersStateList}
	m.reloadList()
	return m
}

func (m *usersModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *usersModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.err = nil
				if m.selected != nil {
					m.state = usersStateDetail
					m.form = nil
					m.refreshSelected()
					m.list = newActionList(m.width, m.height)
				} else {
					m.state = usersStateList
					m.form = nil
					m.reloadList()
				}
			}
		}
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			if m.state == usersStateList {
				m.Done = true
				return nil
			}
		case "esc":
			m.back()
			return nil
		}
	}

	switch m.state {
	case usersStateList:
		return m.updateList(msg)
	case usersStateDetail:
		return m.updateDetail(msg)
	case usersStateCreate, usersStateResetPassword, usersStateRedeem:
		return m.updateForm(msg)
	default:
		return nil
	}
}

func (m *usersModel) updateList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			it, ok := m.list.SelectedItem().(userItem)
			if !ok {
				return cmd
			}
			if it.kind == "create" {
				m.startCreate()
				return nil
			}

			u, err := m.app.Store.Profile(m.app.Context(), it.id)
			if err != nil {
				m.err = err
				return nil
			}
			m.selected = &u
			m.notice = ""
			m.loadActivity()
			m.state = usersStateDetail
			m.list = newActionList(m.width, m.height)
			return nil
		}
	}

	return cmd
}

func (m *usersModel) updateDetail(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			it, ok := m.list.SelectedItem().(userItem)
			if !ok {
				return cmd
			}
			switch it.kind {
			case "redeem":
				m.startRedeem()
			case "reset_password":
				m.startResetPassword()
			case "back":
				m.back()
			}
			return nil
		}
	}

	return cmd
}

func (m *usersModel) updateForm(msg tea.Msg) tea.Cmd {
	if m.form == nil {
		m.err = fmt.Errorf("internal error: form not initialized")
		return nil
	}
	var cmd tea.Cmd
	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f
	if m.form.State != huh.StateCompleted {
		return cmd
	}

	ctx := m.app.Context()
	switch m.state {
	case usersStateCreate:
		if m.createSave {
			email := m.createEmail
			if email == "" {
				email = m.createUsername + "@example.com"
			}
			if _, err := m.app.Store.Signup(ctx, m.createUsername, email, m.createPassword); err != nil {
				m.err = err
				return nil
			}
		}
		m.form = nil
		m.state = usersStateList
		m.reloadList()
		return nil
	case usersStateResetPassword:
		if m.pwSave && m.selected != nil {
			if err := m.app.Store.ResetPassword(ctx, m.selected.ID, m.newPassword); err != nil {
				m.err = err
				return nil
			}
			m.notice = "Password reset."
		}
	case usersStateRedeem:
		if m.redeemSave && m.selected != nil {
			id, _ := strconv.Atoi(m.rewardChoice)
			receipt, err := m.app.Store.RedeemReward(ctx, m.selected.ID, id)
			if err != nil {
				m.err = err
				return nil
			}
			m.notice = fmt.Sprintf("%s (%d points left)", receipt.Message, receipt.RemainingPoints)
		}
	}

	m.refreshSelected()
	m.form = nil
	m.state = usersStateDetail
	m.list = newActionList(m.width, m.height)
	return nil
}

func (m *usersModel) View() string {
	if m.err != nil {
		return errStyle.Render("Users error: ") + m.err.Error() + "\n\nPress Enter/Esc to go back."
	}

	switch m.state {
	case usersStateList:
		m.list.Title = "Users"
		return m.list.View() + "\n(q to quit, enter to select)"
	case usersStateDetail:
		if m.selected == nil {
			return "No user selected\n\n(esc to go back)"
		}
		header := titleStyle.Render(fmt.Sprintf("User: %s (%s)", m.selected.Username, m.selected.Level)) + "\n"
		meta := fmt.Sprintf("Email: %s\nPoints: %d\nJoined: %s\nSpeed samples: %d\n",
			m.selected.Email, m.selected.Points, m.selected.CreatedAt.Format("2006-01-02 15:04"), m.speedSamples,
		)
		history := "Redemptions: none\n"
		if len(m.redemptions) > 0 {
			history = "Redemptions:\n"
			for _, r := range m.redemptions {
				history += fmt.Sprintf("  %s  %s (-%d)\n", r.RedeemedAt.Format("2006-01-02 15:04"), r.Description, r.PointsCost)
			}
		}
		notice := ""
		if m.notice != "" {
			notice = noticeStyle.Render(m.notice) + "\n"
		}
		m.list.Title = "Actions"
		return header + meta + history + "\n" + notice + m.list.View() + "\n(esc to go back)"
	default:
		return m.form.View() + "\n\n(esc to go back)"
	}
}

func (m *usersModel) reloadList() {
	m.list = newList(nil, m.width, m.height-2, true)
	m.list.Title = "Users"

	users, err := m.app.Store.Users(m.app.Context())
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(users)+1)
	items = append(items, userItem{title: "+ Create new user", desc: "Add a new account", kind: "create"})
	for _, u := range users {
		desc := fmt.Sprintf("%s • %d points", u.Level, u.Points)
		items = append(items, userItem{id: u.ID, title: u.Username, desc: desc, kind: "user"})
	}
	m.list.SetItems(items)
}

func newActionList(w, h int) list.Model {
	items := []list.Item{
		userItem{title: "Redeem reward", desc: "Spend points on a catalog reward", kind: "redeem"},
		userItem{title: "Reset password", desc: "Set a new password", kind: "reset_password"},
		userItem{title: "Back", desc: "Return to users list", kind: "back"},
	}
	return newList(items, w, h-12, false)
}

func (m *usersModel) startCreate() {
	m.state = usersStateCreate
	m.createUsername = ""
	m.createPassword = ""
	m.createEmail = ""
	m.createSave = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&m.createUsername).Validate(nonEmpty("username")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&m.createPassword).Validate(nonEmpty("password")),
			huh.NewInput().Title("Email (blank for <username>@example.com)").Value(&m.createEmail),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Create user?").Value(&m.createSave),
		),
	)
}

func (m *usersModel) startResetPassword() {
	m.state = usersStateResetPassword
	m.newPassword = ""
	m.pwConfirm = ""
	m.pwSave = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&m.newPassword).Validate(nonEmpty("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&m.pwConfirm).Validate(func(s string) error {
				if s != m.newPassword {
					return fmt.Errorf("passwords do not match")
				}
				return nil
			}),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Reset password?").Value(&m.pwSave),
		),
	)
}

func (m *usersModel) startRedeem() {
	m.state = usersStateRedeem
	m.redeemSave = true

	catalog := rewards.Catalog()
	options := make([]huh.Option[string], 0, len(catalog))
	for _, r := range catalog {
		label := fmt.Sprintf("%s (%d points)", r.Description, r.Points)
		options = append(options, huh.NewOption(label, strconv.Itoa(r.ID)))
	}
	m.rewardChoice = strconv.Itoa(catalog[0].ID)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title(fmt.Sprintf("Reward (balance %d)", m.selected.Points)).Options(options...).Value(&m.rewardChoice),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Redeem?").Value(&m.redeemSave),
		),
	)
}

func (m *usersModel) back() {
	switch m.state {
	case usersStateList:
		m.Done = true
	case usersStateDetail:
		m.state = usersStateList
		m.selected = nil
		m.form = nil
		m.reloadList()
	default:
		m.state = usersStateDetail
		m.form = nil
		m.list = newActionList(m.width, m.height)
	}
}

func (m *usersModel) refreshSelected() {
	if m.selected == nil {
		return
	}
	u, err := m.app.Store.Profile(m.app.Context(), m.selected.ID)
	if err == nil {
		m.selected = &u
	}
	m.loadActivity()
}

func (m *usersModel) loadActivity() {
	ctx := m.app.Context()
	records, err := m.app.Store.SpeedRecords(ctx, m.selected.ID)
	if err != nil {
		m.err = err
		return
	}
	m.speedSamples = len(records)

	history, err := m.app.Store.Redemptions(ctx, m.selected.ID)
	if err != nil {
		m.err = err
		return
	}
	m.redemptions = history
}
