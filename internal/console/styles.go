package console

import "github.com/charmbracelet/lipgloss"

// Palette shared by every console screen.
var (
	colorPrimary = lipgloss.Color("62")
	colorAccent  = lipgloss.Color("212")
	colorMuted   = lipgloss.Color("243")
	colorDanger  = lipgloss.Color("196")
	colorOK      = lipgloss.Color("77")
	colorBadge   = lipgloss.Color("25")
	colorWhite   = lipgloss.Color("231")
)

// Styles holds the text styles the console screens render with.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	Body     lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error      lipgloss.Style
	FieldError lipgloss.Style
	Chip       lipgloss.Style

	PublicBadge  lipgloss.Style
	AdminBadge   lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
}

// DefaultStyles builds the standard console styling.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true),

		Header: lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(colorWhite).
			Padding(0, 1).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),

		Selected: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(colorMuted),

		Error: lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true),

		FieldError: lipgloss.NewStyle().
			Foreground(colorDanger),

		Chip: lipgloss.NewStyle().
			Foreground(colorAccent),

		PublicBadge: lipgloss.NewStyle().
			Background(colorOK).
			Foreground(colorWhite).
			Padding(0, 1),

		AdminBadge: lipgloss.NewStyle().
			Background(colorBadge).
			Foreground(colorWhite).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			Foreground(colorOK).
			Bold(true),

		ToastError: lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true),
	}
}
