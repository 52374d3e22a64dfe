package preview

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"f1led-go/types"
)

var (
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Console renders each strip image as a row of coloured cells, rewriting
// the same block of lines in place.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	columns int
	lines   int // lines written by the previous frame
}

// NewConsole wraps rows at columns cells (0 = one row).
func NewConsole(w io.Writer, columns int) *Console {
	return &Console{w: w, columns: columns}
}

func (c *Console) Show(colors []types.RGBColor) {
	out := Render(colors, c.columns)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lines > 0 {
		// cursor up to the start of the previous block
		fmt.Fprintf(c.w, "\x1b[%dF", c.lines)
	}
	fmt.Fprintln(c.w, out)
	c.lines = strings.Count(out, "\n") + 1
}

// Render draws one cell per LED; unlit LEDs show as a dim dot.
func Render(colors []types.RGBColor, columns int) string {
	var b strings.Builder
	for i, col := range colors {
		if columns > 0 && i > 0 && i%columns == 0 {
			b.WriteByte('\n')
		}
		if col == types.Off {
			b.WriteString(offStyle.Render("·"))
			continue
		}
		b.WriteString(cellStyle(col).Render("●"))
	}
	return b.String()
}

// Legend lists drivers with their colours, one per line.
func Legend(drivers []types.DriverInfo) string {
	var b strings.Builder
	for i, d := range drivers {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cellStyle(d.Color).Render("●"))
		b.WriteString(legendStyle.Render(fmt.Sprintf(" %2d %s %s", d.Number, d.Code, d.Team)))
	}
	return b.String()
}

func cellStyle(c types.RGBColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(c)))
}

// Hex formats c as #rrggbb.
func Hex(c types.RGBColor) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
