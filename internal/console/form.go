package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/brightmill/storefront/internal/apiclient"
	"github.com/brightmill/storefront/pkg/catalog"
)

// formPhase is the lifecycle of one form screen. A submit or delete runs
// alone: while the form is submitting all input is ignored, and every
// outcome delivers a message that either navigates away or returns the
// form to formIdle.
type formPhase int

const (
	formIdle formPhase = iota
	formSubmitting
	formConfirming
)

// FormModel is the create/edit screen for one record. A single
// implementation serves every kind; the definition drives the fields, the
// titles, and the reference pickers.
type FormModel struct {
	client  *apiclient.Client
	styles  Styles
	gen     int
	storeID string
	def     catalog.Definition

	editing bool
	record  catalog.Record // zero in create mode

	inputs   []fieldInput
	focus    int
	phase    formPhase
	deleting bool
}

// NewFormModel builds the form for one kind. A nil existing record means
// create mode.
func NewFormModel(client *apiclient.Client, styles Styles, gen int, storeID string, def catalog.Definition, existing *catalog.Record) FormModel {
	m := FormModel{
		client:  client,
		styles:  styles,
		gen:     gen,
		storeID: storeID,
		def:     def,
	}
	m.inputs = make([]fieldInput, len(def.Fields))
	for i, f := range def.Fields {
		m.inputs[i] = newFieldInput(f)
	}
	if existing != nil {
		m.editing = true
		m.record = *existing
		for i := range m.inputs {
			m.inputs[i].setValue(existing.Fields)
		}
	}
	if len(m.inputs) > 0 {
		m.inputs[0].focus()
	}
	return m
}

func (m FormModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadOptions())
}

// loadOptions fans out one list call per referenced kind and joins the
// results. A failed fetch leaves that picker empty instead of failing the
// screen.
func (m FormModel) loadOptions() tea.Cmd {
	refs := m.def.References()
	if len(refs) == 0 {
		return nil
	}
	client, storeID, gen := m.client, m.storeID, m.gen
	kinds := make([]catalog.Kind, len(refs))
	for i, f := range refs {
		kinds[i] = f.Ref
	}
	return func() tea.Msg {
		options := make(map[catalog.Kind][]catalog.Record, len(kinds))
		var mu sync.Mutex
		var g errgroup.Group
		for _, kind := range kinds {
			g.Go(func() error {
				records, err := client.List(context.Background(), storeID, kind)
				if err != nil {
					return nil
				}
				mu.Lock()
				options[kind] = records
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
		return optionsLoadedMsg{gen: gen, options: options}
	}
}

// applyOptions installs the reference pickers' datasets.
func (m *FormModel) applyOptions(options map[catalog.Kind][]catalog.Record) {
	for i := range m.inputs {
		f := m.inputs[i].field
		if f.Kind != catalog.FieldReference {
			continue
		}
		refDef, err := catalog.Def(f.Ref)
		if err != nil {
			continue
		}
		records := options[f.Ref]
		opts := make([]refOption, len(records))
		for j, rec := range records {
			opts[j] = refOption{ID: rec.ID, Title: refDef.RecordTitle(rec)}
		}
		m.inputs[i].setOptions(opts)
	}
}

func (m FormModel) handleKey(msg tea.KeyMsg) (FormModel, tea.Cmd) {
	if m.phase == formSubmitting {
		return m, nil
	}
	if m.phase == formConfirming {
		switch msg.String() {
		case "y":
			m.phase = formSubmitting
			m.deleting = true
			return m, m.deleteCmd()
		case "n", "esc":
			m.phase = formIdle
		}
		return m, nil
	}

	cur := &m.inputs[m.focus]
	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "ctrl+d":
		if m.editing {
			m.phase = formConfirming
		}
		return m, nil
	case "up", "shift+tab":
		return m.moveFocus(-1)
	case "down", "tab":
		return m.moveFocus(1)
	case "enter":
		if cur.field.Kind == catalog.FieldImageList && strings.TrimSpace(cur.input.Value()) != "" {
			cur.commitChip()
			return m, nil
		}
		if m.focus == len(m.inputs)-1 {
			return m.submit()
		}
		return m.moveFocus(1)
	case "left":
		if cur.field.Kind == catalog.FieldReference {
			cur.cycle(-1)
			return m, nil
		}
		if cur.field.Kind == catalog.FieldFlag {
			cur.toggle()
			return m, nil
		}
	case "right":
		if cur.field.Kind == catalog.FieldReference {
			cur.cycle(1)
			return m, nil
		}
		if cur.field.Kind == catalog.FieldFlag {
			cur.toggle()
			return m, nil
		}
	case " ":
		if cur.field.Kind == catalog.FieldFlag {
			cur.toggle()
			return m, nil
		}
	case ",":
		if cur.field.Kind == catalog.FieldImageList {
			cur.commitChip()
			return m, nil
		}
	case "backspace":
		if cur.field.Kind == catalog.FieldImageList && cur.input.Value() == "" {
			cur.dropChip()
			return m, nil
		}
	}

	return m, cur.update(msg)
}

// forward passes blink and similar messages to the focused input.
func (m FormModel) forward(msg tea.Msg) (FormModel, tea.Cmd) {
	if m.phase != formIdle || len(m.inputs) == 0 {
		return m, nil
	}
	return m, m.inputs[m.focus].update(msg)
}

func (m FormModel) moveFocus(delta int) (FormModel, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	m.inputs[m.focus].blur()
	n := len(m.inputs)
	m.focus = (m.focus + delta + n) % n
	return m, m.inputs[m.focus].focus()
}

// submit validates the field values and, when they pass, issues the create
// or update request. Validation failures annotate the fields and no
// request is made.
func (m FormModel) submit() (FormModel, tea.Cmd) {
	if m.phase != formIdle {
		return m, nil
	}
	for i := range m.inputs {
		if m.inputs[i].field.Kind == catalog.FieldImageList {
			m.inputs[i].commitChip()
		}
		m.inputs[i].err = ""
	}

	fields := m.buildFields()
	if err := catalog.Validate(m.def, fields); err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			m.applyFieldErrors(verr.Fields)
		}
		return m, nil
	}

	m.phase = formSubmitting
	return m, m.saveCmd(fields)
}

// buildFields assembles the submit payload from the inputs. Flags are
// always present so that clearing one writes false; empty decimals are
// omitted so the required check names them.
func (m FormModel) buildFields() catalog.Fields {
	fields := make(catalog.Fields, len(m.inputs))
	for _, in := range m.inputs {
		switch in.field.Kind {
		case catalog.FieldFlag:
			fields[in.field.Name] = in.on
		case catalog.FieldImageList:
			fields[in.field.Name] = in.chipValues()
		case catalog.FieldReference:
			fields[in.field.Name] = in.selectedID()
		case catalog.FieldDecimal:
			if v := strings.TrimSpace(in.input.Value()); v != "" {
				fields[in.field.Name] = v
			}
		default:
			fields[in.field.Name] = strings.TrimSpace(in.input.Value())
		}
	}
	return fields
}

// saveCmd uploads any local image paths, then creates or updates the
// record. Every outcome delivers a recordSavedMsg.
func (m FormModel) saveCmd(fields catalog.Fields) tea.Cmd {
	client, storeID, gen := m.client, m.storeID, m.gen
	def, editing, id := m.def, m.editing, m.record.ID
	return func() tea.Msg {
		if err := uploadImages(client, storeID, def, fields); err != nil {
			return recordSavedMsg{gen: gen, created: !editing, err: err}
		}
		var (
			rec catalog.Record
			err error
		)
		if editing {
			rec, err = client.Update(context.Background(), storeID, def.Kind, id, fields)
		} else {
			rec, err = client.Create(context.Background(), storeID, def.Kind, fields)
		}
		return recordSavedMsg{gen: gen, created: !editing, record: rec, err: err}
	}
}

func (m FormModel) deleteCmd() tea.Cmd {
	client, storeID, gen := m.client, m.storeID, m.gen
	kind, id := m.def.Kind, m.record.ID
	return func() tea.Msg {
		err := client.Delete(context.Background(), storeID, kind, id)
		return recordDeletedMsg{gen: gen, err: err}
	}
}

// failSave returns the form to the idle phase after a failed save or
// delete. When the service reported per-field problems they are applied
// to the inputs and the returned flag is true.
func (m *FormModel) failSave(err error) bool {
	m.phase = formIdle
	m.deleting = false
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
		m.applyFieldErrors(apiErr.FieldErrors)
		return true
	}
	return false
}

func (m *FormModel) applyFieldErrors(problems map[string]string) {
	for i := range m.inputs {
		if msg, ok := problems[m.inputs[i].field.Name]; ok {
			m.inputs[i].err = msg
		}
	}
}

func (m FormModel) View() string {
	noun := strings.ToLower(m.def.Title)
	var b strings.Builder
	if m.editing {
		b.WriteString(m.styles.Title.Render("Edit " + noun))
		b.WriteString("\n")
		b.WriteString(m.styles.Subtitle.Render("Edit a " + noun + "."))
	} else {
		b.WriteString(m.styles.Title.Render("Create " + noun))
		b.WriteString("\n")
		b.WriteString(m.styles.Subtitle.Render("Add a new " + noun))
	}
	b.WriteString("\n\n")

	if m.phase == formConfirming {
		b.WriteString(m.styles.Title.Render("Are you sure?"))
		b.WriteString("\n")
		b.WriteString(m.styles.Body.Render("This action cannot be undone."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render("[y] Delete  [n] Cancel"))
		return b.String()
	}

	for i, in := range m.inputs {
		if i == m.focus {
			b.WriteString(m.styles.Selected.Render("> " + in.field.Label))
		} else {
			b.WriteString(m.styles.Muted.Render("  " + in.field.Label))
		}
		b.WriteString("\n")
		b.WriteString("  " + in.view(i == m.focus, m.styles))
		b.WriteString("\n")
		if in.err != "" {
			b.WriteString("  " + m.styles.FieldError.Render(in.err))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.phase == formSubmitting {
		if m.deleting {
			b.WriteString(m.styles.Muted.Render("Deleting..."))
		} else {
			b.WriteString(m.styles.Muted.Render("Saving..."))
		}
		return b.String()
	}

	help := "[ctrl+s] Save  [enter] Next  [esc] Back"
	if m.editing {
		help += "  [ctrl+d] Delete"
	}
	b.WriteString(m.styles.Help.Render(help))
	return b.String()
}

// uploadImages replaces local file paths in image fields with hosted URLs
// from the media endpoint. Values that already look like URLs pass through
// untouched.
func uploadImages(client *apiclient.Client, storeID string, def catalog.Definition, fields catalog.Fields) error {
	for _, f := range def.Fields {
		switch f.Kind {
		case catalog.FieldImage:
			url, err := uploadIfLocal(client, storeID, fields.String(f.Name))
			if err != nil {
				return err
			}
			fields[f.Name] = url
		case catalog.FieldImageList:
			paths := fields.Strings(f.Name)
			urls := make([]string, len(paths))
			for i, p := range paths {
				url, err := uploadIfLocal(client, storeID, p)
				if err != nil {
					return err
				}
				urls[i] = url
			}
			fields[f.Name] = urls
		}
	}
	return nil
}

func uploadIfLocal(client *apiclient.Client, storeID, value string) (string, error) {
	if value == "" || isRemote(value) {
		return value, nil
	}
	f, err := os.Open(value)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", value, err)
	}
	defer f.Close()

	up, err := client.Upload(context.Background(), storeID, filepath.Base(value), f)
	if err != nil {
		return "", err
	}
	return up.URL, nil
}

func isRemote(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
