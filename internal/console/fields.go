package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brightmill/storefront/pkg/catalog"
)

// refOption is one selectable target of a reference field.
type refOption struct {
	ID    string
	Title string
}

// fieldInput is the editable state of one form field. The active widget
// depends on the field kind: a text input for text-like kinds, an option
// cycler for references, a toggle for flags, and a chip list plus entry
// buffer for image lists.
type fieldInput struct {
	field catalog.Field

	input   textinput.Model // text, decimal, color, image, image list buffer
	on      bool            // flag
	options []refOption     // reference
	optIdx  int             // reference; -1 when nothing is selected
	want    string          // reference id to select once options arrive
	values  []string        // image list chips
	err     string
}

func newFieldInput(f catalog.Field) fieldInput {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 200
	in.Width = 48
	switch f.Kind {
	case catalog.FieldDecimal:
		in.Placeholder = "9.99"
		in.CharLimit = 20
	case catalog.FieldColor:
		in.Placeholder = "#aabbcc"
		in.CharLimit = 9
	case catalog.FieldImage:
		in.Placeholder = "image path or URL"
	case catalog.FieldImageList:
		in.Placeholder = "image path or URL, comma adds"
	}
	return fieldInput{field: f, input: in, optIdx: -1}
}

// setValue initializes the input from a record's field values.
func (fi *fieldInput) setValue(fields catalog.Fields) {
	switch fi.field.Kind {
	case catalog.FieldFlag:
		fi.on = fields.Bool(fi.field.Name)
	case catalog.FieldImageList:
		fi.values = fields.Strings(fi.field.Name)
	case catalog.FieldReference:
		fi.selectOption(fields.String(fi.field.Name))
	case catalog.FieldDecimal:
		if d, err := fields.Decimal(fi.field.Name); err == nil {
			fi.input.SetValue(d.String())
		}
	default:
		fi.input.SetValue(fields.String(fi.field.Name))
	}
}

// setOptions installs the selectable reference targets and re-applies the
// wanted selection, which may have been set before the options arrived.
func (fi *fieldInput) setOptions(opts []refOption) {
	fi.options = opts
	fi.selectOption(fi.want)
}

func (fi *fieldInput) selectOption(id string) {
	fi.want = id
	fi.optIdx = -1
	for i, o := range fi.options {
		if o.ID == id {
			fi.optIdx = i
			return
		}
	}
}

// selectedID returns the chosen reference target, or "" when none.
func (fi fieldInput) selectedID() string {
	if fi.optIdx >= 0 && fi.optIdx < len(fi.options) {
		return fi.options[fi.optIdx].ID
	}
	return ""
}

// cycle moves the reference selection forward or back.
func (fi *fieldInput) cycle(delta int) {
	if len(fi.options) == 0 {
		return
	}
	if fi.optIdx < 0 {
		fi.optIdx = 0
	} else {
		n := len(fi.options)
		fi.optIdx = (fi.optIdx + delta + n) % n
	}
	fi.want = fi.options[fi.optIdx].ID
}

func (fi *fieldInput) toggle() {
	fi.on = !fi.on
}

// commitChip moves the buffered image path into the chip list.
func (fi *fieldInput) commitChip() {
	v := strings.TrimSpace(fi.input.Value())
	if v == "" {
		return
	}
	fi.values = append(fi.values, v)
	fi.input.SetValue("")
}

// dropChip removes the last chip. Used when backspace hits an empty
// buffer.
func (fi *fieldInput) dropChip() {
	if len(fi.values) > 0 {
		fi.values = fi.values[:len(fi.values)-1]
	}
}

// chipValues returns the chips plus any uncommitted buffer content.
func (fi fieldInput) chipValues() []string {
	vals := append([]string(nil), fi.values...)
	if v := strings.TrimSpace(fi.input.Value()); v != "" {
		vals = append(vals, v)
	}
	return vals
}

func (fi *fieldInput) focus() tea.Cmd {
	switch fi.field.Kind {
	case catalog.FieldFlag, catalog.FieldReference:
		return nil
	default:
		return fi.input.Focus()
	}
}

func (fi *fieldInput) blur() {
	fi.input.Blur()
}

// update routes a message to the field's text input. Reference and flag
// fields take their keys in the form's key handler instead.
func (fi *fieldInput) update(msg tea.Msg) tea.Cmd {
	switch fi.field.Kind {
	case catalog.FieldFlag, catalog.FieldReference:
		return nil
	}
	var cmd tea.Cmd
	fi.input, cmd = fi.input.Update(msg)
	return cmd
}

// view renders the field's value line.
func (fi fieldInput) view(focused bool, s Styles) string {
	switch fi.field.Kind {
	case catalog.FieldFlag:
		box := "[ ]"
		if fi.on {
			box = "[x]"
		}
		if focused {
			return s.Body.Render(box) + " " + s.Muted.Render("space toggles")
		}
		return s.Body.Render(box)

	case catalog.FieldReference:
		if len(fi.options) == 0 {
			return s.Muted.Render("none available")
		}
		label := "select..."
		if fi.optIdx >= 0 && fi.optIdx < len(fi.options) {
			label = fi.options[fi.optIdx].Title
		}
		if focused {
			return s.Body.Render("< " + label + " >")
		}
		return s.Body.Render(label)

	case catalog.FieldImageList:
		var b strings.Builder
		for _, v := range fi.values {
			b.WriteString(s.Chip.Render("[" + v + "]"))
			b.WriteString(" ")
		}
		b.WriteString(fi.input.View())
		return b.String()

	default:
		return fi.input.View()
	}
}
