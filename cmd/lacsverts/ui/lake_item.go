package ui

import (
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/list"
)

// lakeItem adapts a Lake to the bubbles list.
type lakeItem struct {
	lake types.Lake
}

func (i lakeItem) Title() string       { return i.lake.Status.Icon() + " " + i.lake.Name }
func (i lakeItem) Description() string { return i.lake.Region + " · " + i.lake.Status.Label() }
func (i lakeItem) FilterValue() string { return i.lake.Name + " " + i.lake.Region }

func lakeItems(lakes []types.Lake) []list.Item {
	items := make([]list.Item, len(lakes))
	for i, l := range lakes {
		items[i] = lakeItem{lake: l}
	}
	return items
}

func newLakeList(lakes []types.Lake, title string, w, h int) list.Model {
	l := list.New(lakeItems(lakes), list.NewDefaultDelegate(), w, h)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	return l
}

func selectedLake(l list.Model) (types.Lake, bool) {
	item, ok := l.SelectedItem().(lakeItem)
	if !ok {
		return types.Lake{}, false
	}
	return item.lake, true
}
