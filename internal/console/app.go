package console

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brightmill/storefront/internal/apiclient"
	"github.com/brightmill/storefront/pkg/catalog"
)

type screen int

const (
	screenPicker screen = iota
	screenMenu
	screenList
	screenForm
)

// menuKinds is the collection order of the dashboard menu. The settings
// entry for the active store follows them.
var menuKinds = []catalog.Kind{
	catalog.KindBillboard,
	catalog.KindCategory,
	catalog.KindSize,
	catalog.KindColor,
	catalog.KindProduct,
}

// App is the root console model. It owns the active store, the current
// screen, the toast line, and the screen generation used to discard
// responses that land after a navigation.
type App struct {
	client *apiclient.Client
	styles Styles

	gen    int
	screen screen
	store  catalog.Record // active store; zero until picked

	picker  StorePickerModel
	menuIdx int
	list    ListModel
	form    FormModel

	toast  toast
	width  int
	height int
}

func NewApp(client *apiclient.Client) App {
	styles := DefaultStyles()
	a := App{client: client, styles: styles}
	a.picker = NewStorePicker(client, styles, a.gen)
	a.screen = screenPicker
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.picker.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	return next, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.screen == screenList {
			a.list.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.routeKey(msg)

	case toastExpiredMsg:
		a.toast.expire(msg)
		return a, nil

	case storesLoadedMsg:
		if msg.gen != a.gen || a.screen != screenPicker {
			return a, nil
		}
		a.picker.absorb(msg)
		return a, nil

	case storeCreatedMsg:
		if msg.gen != a.gen || a.screen != screenPicker {
			return a, nil
		}
		a.picker.finishCreate(msg.err)
		if msg.err != nil {
			return a, nil
		}
		a.store = msg.store
		toastCmd := a.toast.show("Store created.", toastSuccess)
		next, openCmd := a.openMenu()
		return next, tea.Batch(toastCmd, openCmd)

	case recordsLoadedMsg:
		if msg.gen != a.gen || a.screen != screenList {
			return a, nil
		}
		a.list.absorb(msg)
		return a, nil

	case optionsLoadedMsg:
		if msg.gen != a.gen || a.screen != screenForm {
			return a, nil
		}
		a.form.applyOptions(msg.options)
		return a, nil

	case recordSavedMsg:
		if msg.gen != a.gen || a.screen != screenForm {
			return a, nil
		}
		return a.finishSave(msg)

	case recordDeletedMsg:
		if msg.gen != a.gen || a.screen != screenForm {
			return a, nil
		}
		return a.finishDelete(msg)
	}

	return a.forward(msg)
}

// finishSave resolves a create or update: success toasts and navigates back
// to the collection, failure returns the form to idle and keeps the screen.
func (a App) finishSave(msg recordSavedMsg) (App, tea.Cmd) {
	if msg.err != nil {
		if a.form.failSave(msg.err) {
			return a, nil
		}
		return a, a.toast.show("Something went wrong.", toastError)
	}

	text := a.form.def.Title + " updated."
	if msg.created {
		text = a.form.def.Title + " created."
	}
	toastCmd := a.toast.show(text, toastSuccess)

	if a.form.def.Kind == catalog.KindStore {
		a.store = msg.record
		next, openCmd := a.openMenu()
		return next, tea.Batch(toastCmd, openCmd)
	}
	next, openCmd := a.openList(a.form.def.Kind)
	return next, tea.Batch(toastCmd, openCmd)
}

// finishDelete resolves a confirmed delete. An integrity-restricted delete
// surfaces the entity's guidance message and keeps the record's screen.
func (a App) finishDelete(msg recordDeletedMsg) (App, tea.Cmd) {
	if msg.err != nil {
		a.form.failSave(msg.err)
		return a, a.toast.show(deleteErrorText(msg.err), toastError)
	}

	toastCmd := a.toast.show(a.form.def.Title+" deleted.", toastSuccess)
	if a.form.def.Kind == catalog.KindStore {
		next, openCmd := a.openPicker()
		return next, tea.Batch(toastCmd, openCmd)
	}
	next, openCmd := a.openList(a.form.def.Kind)
	return next, tea.Batch(toastCmd, openCmd)
}

// deleteErrorText picks the toast for a failed delete: integrity conflicts
// carry the entity's guidance message, anything else is generic.
func deleteErrorText(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong."
}

func (a App) routeKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch a.screen {
	case screenPicker:
		picker, cmd, action := a.picker.handleKey(msg)
		a.picker = picker
		switch action {
		case pickerChosen:
			a.store = picker.Chosen()
			return a.openMenu()
		case pickerQuit:
			return a, tea.Quit
		}
		return a, cmd

	case screenMenu:
		return a.handleMenuKey(msg)

	case screenList:
		list, cmd, action := a.list.handleKey(msg)
		a.list = list
		switch action {
		case listAdd:
			return a.openForm(a.list.def.Kind, nil)
		case listEdit:
			if rec, ok := a.list.Selected(); ok {
				return a.openForm(a.list.def.Kind, &rec)
			}
		case listBack:
			return a.openMenu()
		}
		return a, cmd

	case screenForm:
		if msg.String() == "esc" && a.form.phase == formIdle {
			if a.form.def.Kind == catalog.KindStore {
				return a.openMenu()
			}
			return a.openList(a.form.def.Kind)
		}
		form, cmd := a.form.handleKey(msg)
		a.form = form
		return a, cmd
	}
	return a, nil
}

func (a App) handleMenuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	last := len(menuKinds) // settings entry
	switch msg.String() {
	case "up", "k":
		if a.menuIdx > 0 {
			a.menuIdx--
		}
	case "down", "j":
		if a.menuIdx < last {
			a.menuIdx++
		}
	case "enter":
		if a.menuIdx == last {
			return a.openForm(catalog.KindStore, &a.store)
		}
		return a.openList(menuKinds[a.menuIdx])
	case "1", "2", "3", "4", "5":
		return a.openList(menuKinds[int(msg.String()[0]-'1')])
	case "6":
		return a.openForm(catalog.KindStore, &a.store)
	case "s", "esc":
		return a.openPicker()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

// forward hands timer and blink messages to the active screen.
func (a App) forward(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case screenPicker:
		a.picker, cmd = a.picker.forward(msg)
	case screenList:
		a.list, cmd = a.list.forward(msg)
	case screenForm:
		a.form, cmd = a.form.forward(msg)
	}
	return a, cmd
}

// Navigation. Every transition bumps the generation so that responses
// still in flight for the previous screen are discarded on arrival.

func (a App) openPicker() (App, tea.Cmd) {
	a.gen++
	a.screen = screenPicker
	a.store = catalog.Record{}
	a.picker = NewStorePicker(a.client, a.styles, a.gen)
	return a, a.picker.Init()
}

func (a App) openMenu() (App, tea.Cmd) {
	a.gen++
	a.screen = screenMenu
	a.menuIdx = 0
	return a, nil
}

func (a App) openList(kind catalog.Kind) (App, tea.Cmd) {
	a.gen++
	a.screen = screenList
	a.list = NewListModel(a.client, a.styles, a.gen, a.store.ID, catalog.MustDef(kind))
	a.list.SetSize(a.width, a.height)
	return a, a.list.Init()
}

func (a App) openForm(kind catalog.Kind, existing *catalog.Record) (App, tea.Cmd) {
	a.gen++
	a.screen = screenForm
	a.form = NewFormModel(a.client, a.styles, a.gen, a.store.ID, catalog.MustDef(kind), existing)
	return a, a.form.Init()
}

func (a App) View() string {
	var body string
	switch a.screen {
	case screenPicker:
		body = a.picker.View()
	case screenMenu:
		body = a.menuView()
	case screenList:
		body = a.list.View()
	case screenForm:
		body = a.form.View()
	}

	if a.toast.visible() {
		body += "\n\n" + a.toast.render(a.styles)
	}
	return body + "\n"
}

func (a App) menuView() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render(a.store.Fields.String("name")))
	b.WriteString("\n")
	b.WriteString(a.styles.Subtitle.Render("Manage your store"))
	b.WriteString("\n\n")

	for i, kind := range menuKinds {
		label := fmt.Sprintf("%d. %s", i+1, capitalize(catalog.MustDef(kind).Plural))
		if i == a.menuIdx {
			b.WriteString(a.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(a.styles.Body.Render("  " + label))
		}
		b.WriteString("\n")
	}
	settings := fmt.Sprintf("%d. Settings", len(menuKinds)+1)
	if a.menuIdx == len(menuKinds) {
		b.WriteString(a.styles.Selected.Render("> " + settings))
	} else {
		b.WriteString(a.styles.Body.Render("  " + settings))
	}
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[enter] Open  [s] Switch store  [q] Quit"))
	return b.String()
}
