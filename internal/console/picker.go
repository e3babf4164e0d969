package console

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brightmill/storefront/internal/apiclient"
	"github.com/brightmill/storefront/pkg/catalog"
)

// pickerAction tells the app what a store picker key asked for.
type pickerAction int

const (
	pickerNone pickerAction = iota
	pickerChosen
	pickerQuit
)

// StorePickerModel lists the stores and switches the active one. With no
// stores yet it walks the operator through creating the first.
type StorePickerModel struct {
	client *apiclient.Client
	styles Styles
	gen    int

	stores  []catalog.Record
	idx     int
	loading bool

	creating bool
	name     textinput.Model
	saving   bool
	errText  string
}

func NewStorePicker(client *apiclient.Client, styles Styles, gen int) StorePickerModel {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Store name"
	name.CharLimit = 60
	name.Width = 32
	return StorePickerModel{
		client:  client,
		styles:  styles,
		gen:     gen,
		name:    name,
		loading: true,
	}
}

func (m StorePickerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m StorePickerModel) loadCmd() tea.Cmd {
	client, gen := m.client, m.gen
	return func() tea.Msg {
		stores, err := client.List(context.Background(), "", catalog.KindStore)
		return storesLoadedMsg{gen: gen, stores: stores, err: err}
	}
}

// absorb installs the store listing. With no stores the create prompt
// activates immediately.
func (m *StorePickerModel) absorb(msg storesLoadedMsg) {
	m.loading = false
	if msg.err != nil {
		m.errText = "Could not load stores."
		return
	}
	m.errText = ""
	m.stores = msg.stores
	if m.idx >= len(m.stores) {
		m.idx = 0
	}
	if len(m.stores) == 0 {
		m.creating = true
		m.name.Focus()
	}
}

// finishCreate clears the saving flag and surfaces a failed creation.
func (m *StorePickerModel) finishCreate(err error) {
	m.saving = false
	if err == nil {
		return
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
		if msg, ok := apiErr.FieldErrors["name"]; ok {
			m.errText = msg
			return
		}
	}
	m.errText = "Something went wrong."
}

func (m StorePickerModel) handleKey(msg tea.KeyMsg) (StorePickerModel, tea.Cmd, pickerAction) {
	if m.saving {
		return m, nil, pickerNone
	}
	if m.creating {
		switch msg.String() {
		case "enter":
			name := strings.TrimSpace(m.name.Value())
			if name == "" {
				m.errText = "Name is required"
				return m, nil, pickerNone
			}
			m.errText = ""
			m.saving = true
			return m, m.createCmd(name), pickerNone
		case "esc":
			if len(m.stores) > 0 {
				m.creating = false
				m.name.Blur()
				m.name.SetValue("")
				m.errText = ""
			}
			return m, nil, pickerNone
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd, pickerNone
	}

	switch msg.String() {
	case "up", "k":
		if m.idx > 0 {
			m.idx--
		}
	case "down", "j":
		if m.idx < len(m.stores)-1 {
			m.idx++
		}
	case "enter":
		if len(m.stores) > 0 {
			return m, nil, pickerChosen
		}
	case "n":
		m.creating = true
		return m, m.name.Focus(), pickerNone
	case "r":
		m.loading = true
		return m, m.loadCmd(), pickerNone
	case "q", "esc":
		return m, nil, pickerQuit
	}
	return m, nil, pickerNone
}

// forward passes blink messages to the name input.
func (m StorePickerModel) forward(msg tea.Msg) (StorePickerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

// Chosen returns the highlighted store.
func (m StorePickerModel) Chosen() catalog.Record {
	if m.idx >= 0 && m.idx < len(m.stores) {
		return m.stores[m.idx]
	}
	return catalog.Record{}
}

func (m StorePickerModel) createCmd(name string) tea.Cmd {
	client, gen := m.client, m.gen
	return func() tea.Msg {
		store, err := client.Create(context.Background(), "", catalog.KindStore, catalog.Fields{"name": name})
		return storeCreatedMsg{gen: gen, store: store, err: err}
	}
}

func (m StorePickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Storefront"))
	b.WriteString("\n")

	if m.creating {
		if len(m.stores) == 0 {
			b.WriteString(m.styles.Subtitle.Render("Create your first store to get started"))
		} else {
			b.WriteString(m.styles.Subtitle.Render("Create a new store"))
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.Body.Render("Name"))
		b.WriteString("\n  ")
		b.WriteString(m.name.View())
		b.WriteString("\n")
		if m.errText != "" {
			b.WriteString("  " + m.styles.FieldError.Render(m.errText))
			b.WriteString("\n")
		}
		if m.saving {
			b.WriteString(m.styles.Muted.Render("Saving..."))
		} else {
			b.WriteString("\n")
			b.WriteString(m.styles.Help.Render("[enter] Create  [esc] Cancel"))
		}
		return b.String()
	}

	b.WriteString(m.styles.Subtitle.Render("Select a store"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.styles.Muted.Render("Loading stores..."))
		return b.String()
	}
	if m.errText != "" {
		b.WriteString(m.styles.Error.Render(m.errText))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("[r] Retry  [q] Quit"))
		return b.String()
	}

	for i, store := range m.stores {
		name := store.Fields.String("name")
		if i == m.idx {
			b.WriteString(m.styles.Selected.Render("> " + name))
		} else {
			b.WriteString(m.styles.Body.Render("  " + name))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("[enter] Open  [n] New store  [r] Reload  [q] Quit"))
	return b.String()
}
