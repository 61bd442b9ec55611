package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"

	"github.com/notepid/roadwatch/internal/rewards"
)

type catalogModel struct {
	Done bool
	list list.Model
}

type rewardItem struct{ r rewards.Reward }

func (i rewardItem) Title() string       { return i.r.Description }
func (i rewardItem) Description() string { return fmt.Sprintf("#%d • %d points", i.r.ID, i.r.Points) }
func (i rewardItem) FilterValue() string { return i.r.Description }

func newCatalogModel() *catalogModel {
	catalog := rewards.Catalog()
	items := make([]list.Item, 0, len(catalog))
	for _, r := range catalog {
		items = append(items, rewardItem{r: r})
	}
	l := newList(items, 0, 0, false)
	l.Title = "Rewards Catalog"
	return &catalogModel{list: l}
}

func (m *catalogModel) SetSize(w, h int) {
	m.list.SetSize(w, h-2)
}

func (m *catalogModel) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "esc", "enter":
			m.Done = true
			return nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *catalogModel) View() string {
	return m.list.View() + "\n(read-only, esc to go back)"
}
