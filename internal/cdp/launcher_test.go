package cdp

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestChromeProcessPID(t *testing.T) {
	t.Run("never started", func(t *testing.T) {
		cp := &ChromeProcess{port: "9222"}
		if pid := cp.PID(); pid != 0 {
			t.Errorf("expected PID 0, got %d", pid)
		}
	})

	t.Run("cmd with nil process", func(t *testing.T) {
		cp := &ChromeProcess{cmd: &exec.Cmd{}, port: "9222"}
		if pid := cp.PID(); pid != 0 {
			t.Errorf("expected PID 0 for nil Process, got %d", pid)
		}
	})
}

func TestChromeProcessStopRemovesProfile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("failed to create profile dir: %v", err)
	}

	cp := &ChromeProcess{cmd: &exec.Cmd{}, port: "9222", profileDir: dir}
	if err := cp.Stop(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected profile dir to be removed, stat err = %v", err)
	}
}

func TestLaunchChromeMissingExecutable(t *testing.T) {
	_, err := LaunchChrome(LaunchOptions{
		Port:     "9333",
		ExecPath: filepath.Join(t.TempDir(), "no-such-chrome"),
	})
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
	if !strings.Contains(err.Error(), "no-such-chrome") {
		t.Errorf("error should name the executable, got %v", err)
	}
}

func TestLaunchArgs(t *testing.T) {
	t.Run("without start url", func(t *testing.T) {
		args := launchArgs("9333", "/tmp/profile", "")
		if args[0] != "--remote-debugging-port=9333" {
			t.Errorf("expected debugging port flag first, got %q", args[0])
		}
		if args[1] != "--user-data-dir=/tmp/profile" {
			t.Errorf("expected user data dir flag, got %q", args[1])
		}
		for _, a := range args {
			if a == "" {
				t.Error("unexpected empty argument")
			}
		}
	})

	t.Run("with start url", func(t *testing.T) {
		args := launchArgs("9333", "/tmp/profile", "https://example.com")
		if last := args[len(args)-1]; last != "https://example.com" {
			t.Errorf("expected start url as last argument, got %q", last)
		}
	})
}

func fakeLocator(goos string, env map[string]string, installed []string, onPath map[string]string) chromeLocator {
	return chromeLocator{
		goos:   goos,
		getenv: func(k string) string { return env[k] },
		exists: func(p string) bool {
			for _, i := range installed {
				if i == p {
					return true
				}
			}
			return false
		},
		lookPath: func(name string) (string, error) {
			if p, ok := onPath[name]; ok {
				return p, nil
			}
			return "", errors.New("not found")
		},
	}
}

func TestChromeLocator(t *testing.T) {
	edge := filepath.Join("/Applications", "Microsoft Edge.app/Contents/MacOS/Microsoft Edge")
	chrome := filepath.Join("/Applications", "Google Chrome.app/Contents/MacOS/Google Chrome")
	winChrome := filepath.Join(`C:\Users\me\AppData\Local`, "Google", "Chrome", "Application", "chrome.exe")

	tests := []struct {
		name    string
		locator chromeLocator
		want    string
	}{
		{
			name:    "darwin prefers chrome over edge",
			locator: fakeLocator("darwin", nil, []string{edge, chrome}, nil),
			want:    chrome,
		},
		{
			name:    "darwin falls back to edge",
			locator: fakeLocator("darwin", nil, []string{edge}, nil),
			want:    edge,
		},
		{
			name: "windows uses LOCALAPPDATA",
			locator: fakeLocator("windows",
				map[string]string{"LOCALAPPDATA": `C:\Users\me\AppData\Local`},
				[]string{winChrome}, nil),
			want: winChrome,
		},
		{
			name:    "linux falls back to PATH",
			locator: fakeLocator("linux", nil, nil, map[string]string{"chromium": "/opt/bin/chromium"}),
			want:    "/opt/bin/chromium",
		},
		{
			name:    "nothing installed",
			locator: fakeLocator("linux", nil, nil, nil),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.locator.find(); got != tt.want {
				t.Errorf("find() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindowsInstallPathsSkipUnsetEnv(t *testing.T) {
	l := fakeLocator("windows", map[string]string{"PROGRAMFILES": `C:\Program Files`}, nil, nil)
	paths := l.installPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths for one root, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if !strings.HasPrefix(p, `C:\Program Files`) {
			t.Errorf("unexpected path %q", p)
		}
	}
}
