package main

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ajsharma/tab_cookies/internal/clipboard"
	"github.com/ajsharma/tab_cookies/internal/cookies"
	"github.com/ajsharma/tab_cookies/internal/popup"
	"github.com/ajsharma/tab_cookies/internal/ui"
)

// List command variables.
var (
	listQuery string
	listField cookies.Field
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the active tab's cookies",
	Long: `Print the cookies visible to the active tab's hostname as a table.

Example:
  tab_cookies list
  tab_cookies list --query sess --field name
  tab_cookies list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// Copy command variables.
var (
	copyName   string
	copyDomain string
	copyPart   string
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy one cookie to the clipboard",
	Long: `Copy the value, name or name=value pair of a cookie on the active tab.

Example:
  tab_cookies copy --name session
  tab_cookies copy --name id --domain example.com --part pair`,
	Args: cobra.NoArgs,
	RunE: runCopy,
}

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List open tabs and mark the one tab_cookies would read",
	Args:  cobra.NoArgs,
	RunE:  runTabs,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only show cookies containing this text")
	listCmd.Flags().VarP(&listField, "field", "f", "Field to search: all, name or value")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")

	copyCmd.Flags().StringVarP(&copyName, "name", "n", "", "Cookie name")
	copyCmd.Flags().StringVarP(&copyDomain, "domain", "d", "", "Cookie domain, when several cookies share a name")
	copyCmd.Flags().StringVar(&copyPart, "part", "value", "What to copy: value, name or pair")
	_ = copyCmd.MarkFlagRequired("name")
}

// defaultField returns the --field flag if set, otherwise the configured default.
func defaultField(cmd *cobra.Command, flag cookies.Field) cookies.Field {
	if cmd.Flags().Lookup("field") != nil && cmd.Flags().Changed("field") {
		return flag
	}
	field, err := cookies.ParseField(cfg.DefaultField)
	if err != nil {
		return cookies.FieldAll
	}
	return field
}

func runPopup(cmd *cobra.Command, _ []string) error {
	if !stdoutIsTerminal() {
		// Nothing to draw on; behave like list.
		return runList(cmd, nil)
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.session(clipboard.NewSystem())
	defer session.Close()
	session.Open(a.ctx)

	model := ui.NewModel(a.ctx, session, defaultField(cmd, cookies.FieldAll), cfg.Color)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run(); err != nil {
		return fmt.Errorf("popup failed: %w", err)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.session(clipboard.NewSystem())
	defer session.Close()
	session.Load(a.ctx)

	field := defaultField(cmd, listField)
	matches := session.View(listQuery, field)

	if listJSON {
		records := make([]cookies.Record, 0, len(matches))
		for _, m := range matches {
			records = append(records, m.Record)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode cookies: %w", err)
		}
		return nil
	}

	ui.RenderTable(os.Stdout, session.Target().Hostname, matches, ui.TableOptions{
		Query: listQuery,
		Field: field,
		Color: cfg.Color,
	})
	return nil
}

func runCopy(_ *cobra.Command, _ []string) error {
	part, err := popup.ParsePart(copyPart)
	if err != nil {
		return err
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.session(clipboard.NewSystem())
	defer session.Close()
	session.Load(a.ctx)

	index, ok := session.Find(copyName, copyDomain)
	if !ok {
		host := session.Target().Hostname
		if host == "" {
			host = "the active tab"
		}
		return fmt.Errorf("cookie %q not found for %s", copyName, host)
	}

	if !session.Copy(a.ctx, index, part) {
		return fmt.Errorf("failed to copy %s of %q to the clipboard", part, copyName)
	}
	fmt.Printf("Copied %s of %s\n", part, copyName)
	return nil
}

func runTabs(_ *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	tabs, err := a.browser.ListTabs(a.ctx)
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}

	active := a.resolver().Resolve(a.ctx)
	ui.RenderTabs(os.Stdout, tabs, active.TargetID)
	return nil
}
