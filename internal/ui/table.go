// Package ui renders cookie lists: plain tables for one-shot commands and an
// interactive terminal popup.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ajsharma/tab_cookies/internal/cdp"
	"github.com/ajsharma/tab_cookies/internal/cookies"
	"github.com/ajsharma/tab_cookies/internal/popup"
)

// NoCookiesMessage is shown when a view has nothing to list.
const NoCookiesMessage = "No cookies found."

// valueWidthMax keeps long cookie values from blowing up the table width.
const valueWidthMax = 80

var matchColors = text.Colors{text.FgHiYellow, text.Bold}

// TableOptions controls RenderTable.
type TableOptions struct {
	Query string
	Field cookies.Field
	Color bool
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// RenderTable writes the matches as a table, highlighting the query in the
// columns that participated in matching.
func RenderTable(w io.Writer, host string, matches []popup.Match, opts TableOptions) {
	if len(matches) == 0 {
		fmt.Fprintln(w, NoCookiesMessage)
		return
	}

	t := newTable(w)
	if host != "" {
		t.SetTitle("Cookies for %s", host)
	}
	t.AppendHeader(table.Row{"#", "Name", "Value", "Domain"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Value", WidthMax: valueWidthMax},
	})

	hl := func(s string, on bool) string {
		if !on || !opts.Color {
			return s
		}
		return highlight(s, opts.Query)
	}
	all := opts.Field == cookies.FieldAll
	for _, m := range matches {
		t.AppendRow(table.Row{
			m.Index + 1,
			hl(m.Name, all || opts.Field == cookies.FieldName),
			hl(m.Value, all || opts.Field == cookies.FieldValue),
			hl(m.Domain, all),
		})
	}
	t.Render()
	fmt.Fprintf(w, "%d %s\n", len(matches), plural(len(matches), "cookie", "cookies"))
}

// RenderTabs writes the page targets, marking the active one.
func RenderTabs(w io.Writer, tabs []*cdp.Tab, activeID string) {
	if len(tabs) == 0 {
		fmt.Fprintln(w, "No page targets found.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"", "Target", "Title", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 40},
		{Name: "URL", WidthMax: valueWidthMax},
	})
	for _, tab := range tabs {
		marker := ""
		if tab.TargetID == activeID {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, tab.TargetID, tab.Title, tab.URL})
	}
	t.Render()
}

// highlight wraps every literal match of query in s with matchColors.
func highlight(s, query string) string {
	var sb strings.Builder
	for _, seg := range cookies.Highlight(s, query) {
		if seg.Match {
			sb.WriteString(matchColors.Sprint(seg.Text))
		} else {
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
