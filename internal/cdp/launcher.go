// Package cdp provides the Chrome DevTools Protocol side of tab_cookies: target
// discovery, launching Chrome and reading cookies from a running browser.
package cdp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// ErrChromeNotFound is returned when no Chrome-compatible browser is installed.
var ErrChromeNotFound = errors.New("chrome executable not found")

// stopGrace is how long Stop waits after an interrupt before killing Chrome.
const stopGrace = 3 * time.Second

// LaunchOptions describes a Chrome instance to start.
type LaunchOptions struct {
	Port     string
	StartURL string
	// ExecPath overrides browser discovery when set.
	ExecPath string
}

// ChromeProcess is a Chrome instance started by LaunchChrome. Its profile
// directory is temporary and removed by Stop.
type ChromeProcess struct {
	cmd        *exec.Cmd
	exited     chan struct{}
	port       string
	profileDir string
}

// launchArgs builds the Chrome command line. startURL may be empty.
func launchArgs(port, profileDir, startURL string) []string {
	args := []string{
		"--remote-debugging-port=" + port,
		"--user-data-dir=" + profileDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-features=TranslateUI",
		"--disable-background-networking",
		"--disable-sync",
	}
	if startURL != "" {
		args = append(args, startURL)
	}
	return args
}

// LaunchChrome starts Chrome with remote debugging on opts.Port, using a
// throwaway profile.
func LaunchChrome(opts LaunchOptions) (*ChromeProcess, error) {
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = systemLocator().find()
	}
	if execPath == "" {
		return nil, ErrChromeNotFound
	}

	profileDir, err := os.MkdirTemp("", "tab_cookies_chrome_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create profile dir: %w", err)
	}

	cmd := exec.Command(execPath, launchArgs(opts.Port, profileDir, opts.StartURL)...)
	if err := cmd.Start(); err != nil {
		_ = os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to start %s: %w", filepath.Base(execPath), err)
	}

	proc := &ChromeProcess{
		cmd:        cmd,
		exited:     make(chan struct{}),
		port:       opts.Port,
		profileDir: profileDir,
	}
	go func() {
		_ = cmd.Wait()
		close(proc.exited)
	}()
	return proc, nil
}

// Stop asks Chrome to exit, kills it if it is still running after a grace
// period, and removes its profile directory.
func (cp *ChromeProcess) Stop() error {
	defer func() {
		if cp.profileDir != "" {
			_ = os.RemoveAll(cp.profileDir)
		}
	}()

	if cp.cmd == nil || cp.cmd.Process == nil || cp.exited == nil {
		return nil
	}

	// Windows has no interrupt signal for other processes.
	if runtime.GOOS != "windows" {
		if err := cp.cmd.Process.Signal(os.Interrupt); err == nil {
			select {
			case <-cp.exited:
				return nil
			case <-time.After(stopGrace):
			}
		}
	}

	if err := cp.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill chrome: %w", err)
	}
	<-cp.exited
	return nil
}

// PID returns the process ID, or 0 if the process never started.
func (cp *ChromeProcess) PID() int {
	if cp.cmd == nil || cp.cmd.Process == nil {
		return 0
	}
	return cp.cmd.Process.Pid
}

// chromeLocator searches well-known install locations, then PATH.
type chromeLocator struct {
	goos     string
	getenv   func(string) string
	exists   func(string) bool
	lookPath func(string) (string, error)
}

func systemLocator() chromeLocator {
	return chromeLocator{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		lookPath: exec.LookPath,
	}
}

// installPaths lists absolute browser paths for the platform, Chrome first.
func (l chromeLocator) installPaths() []string {
	switch l.goos {
	case "darwin":
		const bundle = "%s.app/Contents/MacOS/%s"
		var paths []string
		for _, root := range []string{"/Applications", filepath.Join(l.getenv("HOME"), "Applications")} {
			for _, name := range []string{"Google Chrome", "Chromium", "Microsoft Edge"} {
				paths = append(paths, filepath.Join(root, fmt.Sprintf(bundle, name, name)))
			}
		}
		return paths
	case "windows":
		var paths []string
		for _, env := range []string{"LOCALAPPDATA", "PROGRAMFILES", "PROGRAMFILES(X86)"} {
			root := l.getenv(env)
			if root == "" {
				continue
			}
			paths = append(paths,
				filepath.Join(root, "Google", "Chrome", "Application", "chrome.exe"),
				filepath.Join(root, "Microsoft", "Edge", "Application", "msedge.exe"))
		}
		return paths
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/usr/bin/microsoft-edge",
			"/snap/bin/chromium",
		}
	}
}

// find returns the first browser found, or "".
func (l chromeLocator) find() string {
	for _, path := range l.installPaths() {
		if l.exists(path) {
			return path
		}
	}
	for _, name := range []string{"google-chrome", "chrome", "chromium", "chromium-browser", "microsoft-edge"} {
		if path, err := l.lookPath(name); err == nil {
			return path
		}
	}
	return ""
}
