// tab_cookies shows, searches and copies the cookies of the active Chrome tab.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ajsharma/tab_cookies/internal/cdp"
	"github.com/ajsharma/tab_cookies/internal/clipboard"
	"github.com/ajsharma/tab_cookies/internal/config"
	"github.com/ajsharma/tab_cookies/internal/cookies"
	"github.com/ajsharma/tab_cookies/internal/logging"
	"github.com/ajsharma/tab_cookies/internal/popup"
	"github.com/ajsharma/tab_cookies/internal/resolver"
)

var cfg = config.DefaultConfig()

// Global flags that do not live on Config.
var (
	configPath string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "tab_cookies",
	Short: "Search and copy the cookies of the active Chrome tab",
	Long: `tab_cookies connects to Chrome via the DevTools Protocol, finds the active
tab and lists the cookies visible to its hostname. Type to filter, then copy a
value, name or name=value pair to the clipboard.

Example:
  # Connect to existing Chrome (must be started with --remote-debugging-port=9222)
  tab_cookies

  # Auto-launch Chrome with debugging enabled
  tab_cookies --launch --url https://example.com

  # Print matching cookies without the interactive popup
  tab_cookies list --query session --field name`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runPopup,
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Connection flags
	flags.StringVarP(&cfg.ChromePort, "port", "p", cfg.ChromePort,
		"Chrome remote debugging port")
	flags.BoolVar(&cfg.AutoLaunch, "launch", cfg.AutoLaunch,
		"Auto-launch Chrome with debugging enabled")
	flags.StringVar(&cfg.LaunchURL, "url", cfg.LaunchURL,
		"URL to open when auto-launching Chrome")
	flags.StringVar(&cfg.ChromePath, "chrome", cfg.ChromePath,
		"Browser executable to auto-launch instead of searching for one")
	flags.StringVar(&cfg.TargetID, "target", cfg.TargetID,
		"Target ID to read instead of the most recently active tab")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout,
		"Timeout for each DevTools request")

	// Config and logging flags
	flags.StringVar(&configPath, "config", "",
		"YAML config file (flags override its values)")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile,
		"Write JSON logs to this file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose,
		"Enable debug logging")
	flags.BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	rootCmd.Version = config.Version

	rootCmd.AddCommand(listCmd, copyCmd, tabsCmd)
}

// flagOverrides copies explicitly set flag values onto a config loaded from file.
var flagOverrides = map[string]func(dst, src *config.Config){
	"port":     func(dst, src *config.Config) { dst.ChromePort = src.ChromePort },
	"launch":   func(dst, src *config.Config) { dst.AutoLaunch = src.AutoLaunch },
	"url":      func(dst, src *config.Config) { dst.LaunchURL = src.LaunchURL },
	"chrome":   func(dst, src *config.Config) { dst.ChromePath = src.ChromePath },
	"target":   func(dst, src *config.Config) { dst.TargetID = src.TargetID },
	"timeout":  func(dst, src *config.Config) { dst.Timeout = src.Timeout },
	"log-file": func(dst, src *config.Config) { dst.LogFile = src.LogFile },
	"verbose":  func(dst, src *config.Config) { dst.Verbose = src.Verbose },
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		for name, apply := range flagOverrides {
			if cmd.Flags().Changed(name) {
				apply(fileCfg, cfg)
			}
		}
		*cfg = *fileCfg
	}

	if noColor || !stdoutIsTerminal() {
		cfg.Color = false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Color = false
	}

	return cfg.Validate()
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			log.Debug("received shutdown signal", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// app holds what every command needs once flags are resolved.
type app struct {
	ctx     context.Context
	log     *zap.Logger
	browser *cdp.Browser
	cancel  context.CancelFunc
}

// newApp builds the logger and connects to Chrome. quiet suppresses stderr
// logging while a full-screen UI owns the terminal.
func newApp(quiet bool) (*app, error) {
	log, err := logging.New(cfg, quiet)
	if err != nil {
		return nil, err
	}

	ctx, cancel := signalContext(log)

	if cfg.AutoLaunch {
		fmt.Fprintln(os.Stderr, "Auto-launching Chrome...")
	}
	browser, err := cdp.Start(ctx, cfg, log)
	if err != nil {
		cancel()
		_ = log.Sync()
		return nil, err
	}

	log.Debug("starting",
		zap.String("port", cfg.ChromePort),
		zap.String("target", cfg.TargetID))

	return &app{ctx: ctx, log: log, browser: browser, cancel: cancel}, nil
}

func (a *app) Close() {
	if err := a.browser.Close(); err != nil {
		a.log.Warn("failed to stop chrome", zap.Error(err))
	}
	a.cancel()
	_ = a.log.Sync()
}

func (a *app) resolver() *resolver.Resolver {
	return resolver.New(a.browser,
		resolver.WithTargetID(cfg.TargetID),
		resolver.WithLogger(a.log))
}

func (a *app) session(clip clipboard.Writer) *popup.Session {
	return popup.New(a.resolver(), cookies.NewFetcher(a.browser, a.log), clip, a.log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
