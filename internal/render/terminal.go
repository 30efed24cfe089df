// Package render rasterises a scene into a grid of terminal cells. Each cell
// holds two vertically stacked samples drawn with an upper half block.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/tracespace/internal/scene"
)

const halfBlock = "▀"

// Cell is one terminal cell. A non-zero Text rune replaces the samples.
type Cell struct {
	Top    scene.Color
	Bottom scene.Color
	Text   rune
}

// Tooltip colours.
var (
	TooltipForeground = scene.Hex(0xffffff)
	TooltipBackground = scene.Hex(0x1a1a2e)
)

// Terminal is a software renderer targeting a terminal cell grid.
type Terminal struct {
	viewport scene.Viewport
	cells    []Cell
	hits     []scene.Hit
	frames   uint64
}

// NewTerminal creates a renderer with an empty surface.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// SetSize resizes the output surface.
func (t *Terminal) SetSize(vp scene.Viewport) {
	t.viewport = vp
	n := max(vp.Width, 0) * max(vp.Height, 0)
	if cap(t.cells) < n {
		t.cells = make([]Cell, n)
	}
	t.cells = t.cells[:n]
	clear(t.cells)
}

// Viewport returns the surface size.
func (t *Terminal) Viewport() scene.Viewport { return t.viewport }

// Frames returns the number of frames rendered.
func (t *Terminal) Frames() uint64 { return t.frames }

// Render ray casts two samples per cell.
func (t *Terminal) Render(s *scene.Scene, cam *scene.Camera) {
	w, h := t.viewport.Width, t.viewport.Height
	if w <= 0 || h <= 0 || s == nil || cam == nil {
		return
	}
	rows := float64(2 * h)
	for y := range h {
		top := 1 - (float64(2*y)+0.5)/rows*2
		bottom := 1 - (float64(2*y)+1.5)/rows*2
		for x := range w {
			nx := (float64(x)+0.5)/float64(w)*2 - 1
			c := &t.cells[y*w+x]
			c.Text = 0
			c.Top, t.hits = sample(s, cam, nx, top, t.hits)
			c.Bottom, t.hits = sample(s, cam, nx, bottom, t.hits)
		}
	}
	t.frames++
}

// At returns the cell at (x, y).
func (t *Terminal) At(x, y int) (Cell, bool) {
	if x < 0 || y < 0 || x >= t.viewport.Width || y >= t.viewport.Height {
		return Cell{}, false
	}
	return t.cells[y*t.viewport.Width+x], true
}

// Overlay writes a boxed block of text near (x, y), shifted to stay inside
// the surface.
func (t *Terminal) Overlay(x, y int, lines []string) {
	if len(lines) == 0 {
		return
	}
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	width += 2
	height := len(lines)

	x = max(0, min(x+2, t.viewport.Width-width))
	y = max(0, min(y+1, t.viewport.Height-height))

	for i, l := range lines {
		row := []rune(" " + l)
		for j := range width {
			cx, cy := x+j, y+i
			if cx >= t.viewport.Width || cy >= t.viewport.Height {
				continue
			}
			r := ' '
			if j < len(row) {
				r = row[j]
			}
			t.cells[cy*t.viewport.Width+cx].Text = r
		}
	}
}

// String renders the surface as styled text, one line per row.
func (t *Terminal) String() string {
	w, h := t.viewport.Width, t.viewport.Height
	var b strings.Builder
	var run strings.Builder
	for y := range h {
		if y > 0 {
			b.WriteByte('\n')
		}
		var cur lipgloss.Style
		curKey := ""
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(cur.Render(run.String()))
				run.Reset()
			}
		}
		for x := range w {
			c := t.cells[y*w+x]
			key, style, glyph := cellStyle(c)
			if key != curKey {
				flush()
				cur, curKey = style, key
			}
			run.WriteString(glyph)
		}
		flush()
	}
	return b.String()
}

func cellStyle(c Cell) (string, lipgloss.Style, string) {
	if c.Text != 0 {
		return "text", lipgloss.NewStyle().
			Foreground(hexColor(TooltipForeground)).
			Background(hexColor(TooltipBackground)), string(c.Text)
	}
	fg, bg := hexColor(c.Top), hexColor(c.Bottom)
	return string(fg) + string(bg), lipgloss.NewStyle().Foreground(fg).Background(bg), halfBlock
}

// hexColor quantises to 5 bits per channel so neighbouring cells share runs.
func hexColor(c scene.Color) lipgloss.Color {
	q := func(v float64) int {
		return (int(v*255+0.5) >> 3) << 3
	}
	c = c.Clamp()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", q(c.R), q(c.G), q(c.B)))
}
