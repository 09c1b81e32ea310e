// Package clipboard writes text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	sysclip "github.com/atotto/clipboard"
)

// DefaultTimeout bounds a single clipboard write.
const DefaultTimeout = 2 * time.Second

// Writer writes text to a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// ErrUnavailable is returned when no clipboard backend exists for the platform.
var ErrUnavailable = errors.New("no clipboard available")

// System writes to the OS clipboard: pbcopy on macOS, the Win32 API on
// Windows, and xclip, xsel, wl-copy or termux-clipboard-set elsewhere.
type System struct {
	timeout     time.Duration
	unsupported bool
	write       func(string) error
}

// NewSystem returns a Writer backed by the OS clipboard.
func NewSystem() *System {
	return &System{
		timeout:     DefaultTimeout,
		unsupported: sysclip.Unsupported,
		write:       sysclip.WriteAll,
	}
}

// WriteText copies text to the clipboard. The underlying command cannot be
// interrupted, so on timeout it is left to finish in the background.
func (s *System) WriteText(ctx context.Context, text string) error {
	if s.unsupported {
		return fmt.Errorf("%w (install xclip, xsel, or wl-clipboard)", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.write(text)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("clipboard write failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("clipboard write timed out: %w", ctx.Err())
	}
}
