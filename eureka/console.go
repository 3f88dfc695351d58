package eureka

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// Console prints timestamped progress lines for a human operator. It stays
// silent unless enabled, which by default means stdout is a terminal.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	now     func() time.Time
}

// NewConsole returns a Console on stdout, enabled when stdout is a terminal.
func NewConsole() *Console {
	fd := os.Stdout.Fd()
	return &Console{
		w:       os.Stdout,
		enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		now:     time.Now,
	}
}

// Printf writes "[YYYY-MM-DD HH:MM:SS] <message>" followed by a newline.
func (c *Console) Printf(format string, args ...any) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s\n", c.now().Format(consoleTimeFormat), fmt.Sprintf(format, args...))
}
