package console

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 4 * time.Second

type toastLevel int

const (
	toastSuccess toastLevel = iota
	toastError
)

// toast is the transient notification line rendered under the active
// screen.
type toast struct {
	id    int
	text  string
	level toastLevel
}

func (t toast) visible() bool { return t.text != "" }

// show replaces the current toast and arms its expiry timer. Showing a new
// toast invalidates the pending timer of the one it replaced.
func (t *toast) show(text string, level toastLevel) tea.Cmd {
	t.id++
	t.text = text
	t.level = level
	id := t.id
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// expire clears the toast if the timer still belongs to it.
func (t *toast) expire(msg toastExpiredMsg) {
	if msg.id == t.id {
		t.text = ""
	}
}

func (t toast) render(s Styles) string {
	if t.level == toastError {
		return s.ToastError.Render(t.text)
	}
	return s.ToastSuccess.Render(t.text)
}
