package player

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Escape sequences used to drive the terminal. Playback composes these
// into a single buffered write per frame.
const (
	escClear     = "\x1b[2J"     // erase display
	escHome      = "\x1b[H"      // cursor to top left
	escReset     = "\x1b[0m"     // reset colors
	escSyncBegin = "\x1b[?2026h" // begin synchronized update
	escSyncEnd   = "\x1b[?2026l" // end synchronized update
)

// moveTo returns the sequence placing the cursor at a 1-based row and column
func moveTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

// TTY is the Terminal backed by the controlling terminal. Writes go to
// out, which defaults to stdout but can be redirected. Size queries
// always ask the real terminal.
type TTY struct {
	mu  sync.Mutex
	out io.Writer
	fd  int
}

// NewTTY returns a terminal writing to stdout
func NewTTY() *TTY {
	return &TTY{out: os.Stdout, fd: int(os.Stdout.Fd())}
}

// SetOutput redirects subsequent writes to w
func (t *TTY) SetOutput(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = w
}

func (t *TTY) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Write(p)
}

// Size returns the terminal dimensions in character cells
func (t *TTY) Size() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}
