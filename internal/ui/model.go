package ui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ajsharma/tab_cookies/internal/cookies"
	"github.com/ajsharma/tab_cookies/internal/popup"
)

// statusTTL is how long the "copied" confirmation stays visible.
const statusTTL = 2 * time.Second

// nameWidth is the width of the name column in rows.
const nameWidth = 24

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	match    lipgloss.Style
	selected lipgloss.Style
	copied   lipgloss.Style
}

// newStyles returns the popup palette. Without color, only text attributes
// are used so matches and the cursor row stay visible.
func newStyles(color bool) styles {
	if !color {
		return styles{
			title:    lipgloss.NewStyle().Bold(true),
			subtle:   lipgloss.NewStyle(),
			match:    lipgloss.NewStyle().Bold(true).Underline(true),
			selected: lipgloss.NewStyle().Reverse(true),
			copied:   lipgloss.NewStyle(),
		}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		subtle:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		match:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("25")),
		copied:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

type loadedMsg struct{}

type copiedMsg struct {
	key  popup.CopyKey
	name string
	ok   bool
}

type clearStatusMsg struct {
	key popup.CopyKey
}

// Model is the interactive cookie popup.
type Model struct {
	ctx     context.Context
	session *popup.Session

	styles  styles
	input   textinput.Model
	spinner spinner.Model
	field   cookies.Field
	cursor  int
	loading bool
	status  string

	width  int
	height int
}

// NewModel creates the popup model. The session should already be opened.
// color selects the colored palette.
func NewModel(ctx context.Context, session *popup.Session, field cookies.Field, color bool) Model {
	ti := textinput.New()
	ti.Placeholder = "search cookies"
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		session: session,
		styles:  newStyles(color),
		input:   ti,
		spinner: sp,
		field:   field,
		loading: session.State() == popup.StateLoading,
		height:  24,
		width:   80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitLoaded())
}

func (m Model) waitLoaded() tea.Cmd {
	s := m.session
	ctx := m.ctx
	return func() tea.Msg {
		_ = s.Wait(ctx)
		return loadedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case copiedMsg:
		if !msg.ok {
			m.status = ""
			return m, nil
		}
		m.status = fmt.Sprintf("Copied %s of %s", msg.key.Part, msg.name)
		key := msg.key
		return m, tea.Tick(statusTTL, func(time.Time) tea.Msg {
			return clearStatusMsg{key: key}
		})

	case clearStatusMsg:
		m.session.ResetCopied(msg.key)
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.session.Close()
		return m, tea.Quit
	case "tab":
		m.field = m.field.Next()
		m.cursor = 0
		return m, nil
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.matches())-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m, m.copy(popup.PartValue)
	case "ctrl+k":
		return m, m.copy(popup.PartName)
	case "ctrl+y":
		return m, m.copy(popup.PartPair)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
	}
	return m, cmd
}

// copy returns a command copying part of the selected cookie, or nil when
// nothing is selected.
func (m Model) copy(part popup.Part) tea.Cmd {
	matches := m.matches()
	if m.loading || m.cursor >= len(matches) {
		return nil
	}
	sel := matches[m.cursor]
	s := m.session
	ctx := m.ctx
	return func() tea.Msg {
		key := popup.CopyKey{Index: sel.Index, Part: part}
		return copiedMsg{key: key, name: sel.Name, ok: s.Copy(ctx, sel.Index, part)}
	}
}

func (m Model) matches() []popup.Match {
	return m.session.View(m.input.Value(), m.field)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := "Cookie Viewer"
	if host := m.session.Target().Hostname; host != "" {
		title = "Cookies for " + host
	}
	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading cookies...\n")
		return b.String()
	}

	b.WriteString(m.input.View())
	b.WriteString(m.styles.subtle.Render(fmt.Sprintf("  [field: %s]", m.field)))
	b.WriteString("\n\n")

	matches := m.matches()
	if len(matches) == 0 {
		b.WriteString(NoCookiesMessage)
		b.WriteString("\n")
	} else {
		m.writeRows(&b, matches)
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.copied.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.subtle.Render("enter copy value • ctrl+k copy name • ctrl+y copy name=value • tab field • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) writeRows(b *strings.Builder, matches []popup.Match) {
	rows := m.height - 9
	if rows < 3 {
		rows = 3
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(matches) {
		end = len(matches)
	}

	query := m.input.Value()
	nameOn := m.field != cookies.FieldValue
	valueOn := m.field != cookies.FieldName
	valueWidth := m.width - 30
	if valueWidth < 10 {
		valueWidth = 10
	}

	for i := start; i < end; i++ {
		match := matches[i]
		render := m.styles.match.Render
		name := cell(truncate(match.Name, nameWidth), query, nameOn, nameWidth, render)
		value := cell(truncate(match.Value, valueWidth), query, valueOn, 0, render)

		marker := "  "
		if m.copiedAny(match.Index) {
			marker = m.styles.copied.Render("✓ ")
		}

		line := fmt.Sprintf("%s%s  %s", marker, name, value)
		if i == m.cursor {
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s\n", m.styles.subtle.Render(fmt.Sprintf("%d of %d", len(matches), len(m.session.Records()))))
}

// copiedAny reports whether any part of the record at index is marked copied.
func (m Model) copiedAny(index int) bool {
	for _, part := range popup.Parts {
		if m.session.Copied(popup.CopyKey{Index: index, Part: part}) {
			return true
		}
	}
	return false
}

// cell renders literal query matches in text with render when on, then pads
// the result with spaces to width runes of visible text.
func cell(text, query string, on bool, width int, render func(...string) string) string {
	out := text
	if on && query != "" {
		var sb strings.Builder
		for _, seg := range cookies.Highlight(text, query) {
			if seg.Match {
				sb.WriteString(render(seg.Text))
			} else {
				sb.WriteString(seg.Text)
			}
		}
		out = sb.String()
	}
	if n := utf8.RuneCountInString(text); n < width {
		out += strings.Repeat(" ", width-n)
	}
	return out
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
