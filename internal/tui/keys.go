package tui

import "github.com/charmbracelet/bubbles/key"

type authKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

func newAuthKeys() authKeyMap {
	return authKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Toggle: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "sign in / sign up")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k authKeyMap) footer() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Toggle, k.Quit}
}

type mainKeyMap struct {
	Home          key.Binding
	Search        key.Binding
	Notifications key.Binding
	Profile       key.Binding
	NextTab       key.Binding
	PrevTab       key.Binding
	Up            key.Binding
	Down          key.Binding
	Expand        key.Binding
	Like          key.Binding
	MarkRead      key.Binding
	Refresh       key.Binding
	Logout        key.Binding
	Quit          key.Binding
}

func newMainKeys() mainKeyMap {
	return mainKeyMap{
		Home:          key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
		Search:        key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "search")),
		Notifications: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "notifications")),
		Profile:       key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "profile")),
		NextTab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("j/k", "navigate")),
		Down:          key.NewBinding(key.WithKeys("down", "j")),
		Expand:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "all reviews")),
		Like:          key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		MarkRead:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark read")),
		Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Logout:        key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
