package console

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/brightmill/storefront/internal/apiclient"
	"github.com/brightmill/storefront/pkg/catalog"
)

// listAction tells the app what navigation a list key asked for.
type listAction int

const (
	listNone listAction = iota
	listAdd
	listEdit
	listBack
)

// ListModel is the collection browsing screen for one kind: a searchable,
// sortable table over the store's records plus the generated API reference
// for the entity.
type ListModel struct {
	client  *apiclient.Client
	styles  Styles
	gen     int
	storeID string
	def     catalog.Definition

	records []catalog.Record // as loaded, newest first
	titles  map[string]string
	visible []catalog.Record // after search filter and sort

	table     table.Model
	search    textinput.Model
	searching bool
	sortCol   int // index into def.Columns; -1 keeps load order
	loading   bool

	endpoints []catalog.Endpoint

	width  int
	height int
}

func NewListModel(client *apiclient.Client, styles Styles, gen int, storeID string, def catalog.Definition) ListModel {
	columns := make([]table.Column, len(def.Columns))
	for i, col := range def.Columns {
		columns[i] = table.Column{Title: col.Title, Width: columnWidth(col)}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search " + def.Plural
	search.CharLimit = 60
	search.Width = 32

	endpoints, _ := client.Endpoints(storeID, def.Kind)

	return ListModel{
		client:    client,
		styles:    styles,
		gen:       gen,
		storeID:   storeID,
		def:       def,
		table:     t,
		search:    search,
		sortCol:   -1,
		loading:   true,
		endpoints: endpoints,
	}
}

func columnWidth(col catalog.Column) int {
	switch col.Field {
	case "createdAt":
		return 18
	case "price":
		return 10
	case "isFeatured", "isArchived":
		return 9
	default:
		return 20
	}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

// loadCmd fetches the collection and, in parallel, the collections its
// reference columns point at, joining those into an id-to-title map. A
// failed reference fetch leaves its ids unresolved rather than failing
// the load.
func (m ListModel) loadCmd() tea.Cmd {
	client, storeID, gen, def := m.client, m.storeID, m.gen, m.def
	return func() tea.Msg {
		records, err := client.List(context.Background(), storeID, def.Kind)
		if err != nil {
			return recordsLoadedMsg{gen: gen, kind: def.Kind, err: err}
		}

		titles := make(map[string]string)
		var mu sync.Mutex
		var g errgroup.Group
		for _, ref := range def.References() {
			g.Go(func() error {
				refDef, err := catalog.Def(ref.Ref)
				if err != nil {
					return nil
				}
				refs, err := client.List(context.Background(), storeID, ref.Ref)
				if err != nil {
					return nil
				}
				mu.Lock()
				for _, rec := range refs {
					titles[rec.ID] = refDef.RecordTitle(rec)
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		return recordsLoadedMsg{gen: gen, kind: def.Kind, records: records, titles: titles}
	}
}

// absorb installs a load result. Failures leave the collection empty; the
// screen stays interactive either way.
func (m *ListModel) absorb(msg recordsLoadedMsg) {
	m.loading = false
	if msg.err != nil {
		m.records = nil
	} else {
		m.records = msg.records
	}
	m.titles = msg.titles
	m.refresh()
}

// refresh recomputes the visible rows from the search filter and the sort
// column.
func (m *ListModel) refresh() {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	m.visible = m.visible[:0]
	for _, rec := range m.records {
		if query != "" {
			title := strings.ToLower(rec.Fields.String(m.def.SearchField))
			if !strings.Contains(title, query) {
				continue
			}
		}
		m.visible = append(m.visible, rec)
	}

	if m.sortCol >= 0 && m.sortCol < len(m.def.Columns) {
		col := m.def.Columns[m.sortCol]
		sort.SliceStable(m.visible, func(i, j int) bool {
			return m.cellValue(m.visible[i], col) < m.cellValue(m.visible[j], col)
		})
	}

	rows := make([]table.Row, len(m.visible))
	for i, rec := range m.visible {
		row := make(table.Row, len(m.def.Columns))
		for j, col := range m.def.Columns {
			row[j] = m.cellValue(rec, col)
		}
		rows[i] = row
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// cellValue projects one record field into its display cell: reference ids
// resolve to titles, dates format long-form, prices carry a currency
// prefix, and flags print as true/false.
func (m ListModel) cellValue(rec catalog.Record, col catalog.Column) string {
	if col.Field == "createdAt" {
		return rec.CreatedAt.Format("January 2, 2006")
	}
	f, ok := m.def.Field(col.Field)
	if !ok {
		return rec.Fields.String(col.Field)
	}
	switch f.Kind {
	case catalog.FieldReference:
		id := rec.Fields.String(col.Field)
		if title, ok := m.titles[id]; ok {
			return title
		}
		return id
	case catalog.FieldFlag:
		return strconv.FormatBool(rec.Fields.Bool(col.Field))
	case catalog.FieldDecimal:
		d, err := rec.Fields.Decimal(col.Field)
		if err != nil {
			return rec.Fields.String(col.Field)
		}
		return "$" + d.StringFixed(2)
	default:
		return rec.Fields.String(col.Field)
	}
}

// Selected returns the record under the table cursor.
func (m ListModel) Selected() (catalog.Record, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return catalog.Record{}, false
	}
	return m.visible[idx], true
}

func (m ListModel) handleKey(msg tea.KeyMsg) (ListModel, tea.Cmd, listAction) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.refresh()
			return m, nil, listNone
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil, listNone
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refresh()
		return m, cmd, listNone
	}

	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus(), listNone
	case "n":
		return m, nil, listAdd
	case "enter":
		if _, ok := m.Selected(); ok {
			return m, nil, listEdit
		}
		return m, nil, listNone
	case "o":
		m.sortCol++
		if m.sortCol >= len(m.def.Columns) {
			m.sortCol = -1
		}
		m.refresh()
		return m, nil, listNone
	case "r":
		m.loading = true
		return m, m.loadCmd(), listNone
	case "esc":
		return m, nil, listBack
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd, listNone
}

// forward passes timer and blink messages to the embedded widgets.
func (m ListModel) forward(msg tea.Msg) (ListModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	cmds = append(cmds, cmd)
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *ListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if w > 8 {
		m.table.SetWidth(w - 4)
	}
	if h > 24 {
		m.table.SetHeight(h - 16)
	}
}

func (m ListModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s (%d)", capitalize(m.def.Plural), len(m.visible))))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Manage " + m.def.Plural + " for your store"))
	b.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(m.styles.Muted.Render("No results."))
		b.WriteString("\n")
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.sortCol >= 0 && m.sortCol < len(m.def.Columns) {
		b.WriteString(m.styles.Muted.Render("Sorted by " + m.def.Columns[m.sortCol].Title))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderAPIReference())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render("[n] New  [enter] Edit  [/] Search  [o] Sort  [r] Reload  [esc] Back"))
	return b.String()
}

// renderAPIReference lists the REST endpoints for this entity with their
// access badges.
func (m ListModel) renderAPIReference() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("API"))
	b.WriteString("\n")
	if len(m.endpoints) == 0 {
		b.WriteString(m.styles.Muted.Render("No endpoints."))
		return b.String()
	}

	width := 0
	for _, ep := range m.endpoints {
		if len(ep.Method) > width {
			width = len(ep.Method)
		}
	}
	for i, ep := range m.endpoints {
		if i > 0 {
			b.WriteString("\n")
		}
		badge := m.styles.PublicBadge.Render("Public")
		if ep.Access == catalog.AccessAdmin {
			badge = m.styles.AdminBadge.Render("Admin")
		}
		b.WriteString(m.styles.Bold.Render(fmt.Sprintf("%-*s", width, ep.Method)))
		b.WriteString("  ")
		b.WriteString(badge)
		b.WriteString("  ")
		b.WriteString(m.styles.Body.Render(ep.Path))
	}
	return b.String()
}

// capitalize upper-cases the first letter of a collection segment.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
