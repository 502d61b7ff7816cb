// Package status renders the tag status line and publishes it to a FIFO
// that status bars can read.
package status

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Format renders one segment per monitor. The focused monitor's segment
// starts "M<monitor>:D<desktop>", others "m<monitor>:d<desktop>". Each tag
// then follows in index order as A<name> when the desktop shows it,
// O<name> when a window on the desktop carries it, F<name> otherwise. The
// line ends in a newline.
func Format(reg *tags.Registry, state *wm.State) string {
	var b strings.Builder
	for i, m := range state.Monitors {
		if i > 0 {
			b.WriteByte(':')
		}
		mon, desk := 'm', 'd'
		if m == state.Focused {
			mon, desk = 'M', 'D'
		}
		fmt.Fprintf(&b, "%c%s", mon, m.Name)
		d := m.Desk
		if d == nil {
			continue
		}
		fmt.Fprintf(&b, ":%c%s", desk, d.Name)
		occupied := d.Occupied()
		for _, t := range reg.Tags() {
			flag := 'F'
			switch {
			case d.Tags.Intersects(t.Mask):
				flag = 'A'
			case occupied.Intersects(t.Mask):
				flag = 'O'
			}
			fmt.Fprintf(&b, ":%c%s", flag, t.Name)
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// Reporter keeps the latest status line and writes each new one to a FIFO.
// It implements wm.Status.
type Reporter struct {
	path   string
	source func() string
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

// NewReporter returns a reporter rendering lines with source. An empty path
// disables the FIFO; Last still works. A nil logger uses slog.Default.
func NewReporter(path string, source func() string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{path: path, source: source, logger: logger}
}

// Open creates the FIFO if it does not exist yet.
func (r *Reporter) Open() error {
	if r.path == "" {
		return nil
	}
	info, err := os.Stat(r.path)
	switch {
	case err == nil:
		if info.Mode()&fs.ModeNamedPipe == 0 {
			return fmt.Errorf("status path %s exists and is not a fifo", r.path)
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat status fifo: %w", err)
	}
	if err := unix.Mkfifo(r.path, 0600); err != nil {
		return fmt.Errorf("failed to create status fifo: %w", err)
	}
	return nil
}

// Close removes the FIFO.
func (r *Reporter) Close() error {
	if r.path == "" {
		return nil
	}
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Refresh renders a new line and publishes it when it differs from the
// last one. It never blocks on the FIFO: without a reader the line is only
// kept in memory.
func (r *Reporter) Refresh() {
	line := r.source()

	r.mu.Lock()
	changed := line != r.last
	r.last = line
	r.mu.Unlock()

	if changed {
		r.publish(line)
	}
}

// Last returns the most recent status line.
func (r *Reporter) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == "" {
		return r.source()
	}
	return r.last
}

func (r *Reporter) publish(line string) {
	if r.path == "" {
		return
	}
	fd, err := unix.Open(r.path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		if !errors.Is(err, unix.ENXIO) && !errors.Is(err, unix.ENOENT) {
			r.logger.Warn("status fifo open failed", "path", r.path, "error", err)
		}
		return
	}
	defer unix.Close(fd)
	if _, err := unix.Write(fd, []byte(line)); err != nil && !errors.Is(err, unix.EAGAIN) {
		r.logger.Warn("status fifo write failed", "path", r.path, "error", err)
	}
}
