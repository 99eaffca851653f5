package sim

import (
	"io"
	"strings"
	"sync"
)

// Console is a character display held in memory. Display copies the
// drawn rows to an optional writer, one line per row.
type Console struct {
	mu     sync.Mutex
	cols   int
	rows   [][]byte
	x, y   int
	out    io.Writer
	frames int
}

// NewConsole creates a blank display of cols x rows characters
func NewConsole(cols, rows int, out io.Writer) *Console {
	c := &Console{cols: cols, out: out}
	c.rows = make([][]byte, rows)
	for i := range c.rows {
		c.rows[i] = []byte(strings.Repeat(" ", cols))
	}
	return c
}

func (c *Console) SetCursor(x, y uint8) {
	c.mu.Lock()
	c.x, c.y = int(x), int(y)
	c.mu.Unlock()
}

// Write draws p at the cursor. Characters past the end of the row are
// dropped, as on an HD44780 in its visible window.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.y >= len(c.rows) {
		return len(p), nil
	}
	row := c.rows[c.y]
	for _, b := range p {
		if c.x < c.cols {
			row[c.x] = b
		}
		c.x++
	}
	return len(p), nil
}

func (c *Console) Display() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	if c.out == nil {
		return nil
	}
	for _, row := range c.rows {
		line := append(append([]byte("lcd| "), row...), '\n')
		if _, err := c.out.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns the display contents with trailing blanks removed
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, len(c.rows))
	for i, row := range c.rows {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return lines
}

// Frames returns how many times the display was refreshed
func (c *Console) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}
