// Package matrix renders the falling-glyph background.
package matrix

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ResetProbability is the chance per tick that a drop past the bottom restarts.
const ResetProbability = 0.025

// Rand is the random source the rain draws from.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// glyphs holds the single-cell characters the rain draws from.
var glyphs = func() []rune {
	var out []rune
	add := func(lo, hi rune) {
		for r := lo; r <= hi; r++ {
			if runewidth.RuneWidth(r) == 1 {
				out = append(out, r)
			}
		}
	}
	add('ｦ', 'ﾝ')
	add('0', '9')
	add('A', 'Z')
	return out
}()

type cell struct {
	glyph rune
	age   int // 0 is the head of a drop; -1 is empty
}

// Rain is a grid of columns, each with one falling drop.
type Rain struct {
	width, height int
	drops         []int
	cells         [][]cell
	shades        []lipgloss.Style
	rng           Rand
}

// New creates an empty rain. Call Resize before Step.
func New(rng Rand, shades []lipgloss.Style) *Rain {
	return &Rain{rng: rng, shades: shades}
}

// Resize rebuilds the grid. Drops start at random heights above the screen.
func (r *Rain) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r.width, r.height = width, height
	r.drops = make([]int, width)
	for x := range r.drops {
		if height > 0 {
			r.drops[x] = -r.rng.IntN(height)
		}
	}
	r.cells = make([][]cell, height)
	for y := range r.cells {
		row := make([]cell, width)
		for x := range row {
			row[x].age = -1
		}
		r.cells[y] = row
	}
}

// Size returns the grid dimensions.
func (r *Rain) Size() (int, int) {
	return r.width, r.height
}

// Step advances the rain by one frame.
func (r *Rain) Step() {
	if r.width == 0 || r.height == 0 {
		return
	}
	fade := len(r.shades)
	if fade == 0 {
		fade = 1
	}
	for y := range r.cells {
		for x := range r.cells[y] {
			c := &r.cells[y][x]
			if c.age < 0 {
				continue
			}
			c.age++
			if c.age >= fade {
				c.age = -1
			}
		}
	}
	for x, y := range r.drops {
		if y >= 0 && y < r.height {
			r.cells[y][x] = cell{glyph: glyphs[r.rng.IntN(len(glyphs))], age: 0}
		}
		if y >= r.height && r.rng.Float64() < ResetProbability {
			r.drops[x] = 0
			continue
		}
		r.drops[x] = y + 1
	}
}

// Drop returns the current row of column x's drop.
func (r *Rain) Drop(x int) int {
	return r.drops[x]
}

// View renders the grid.
func (r *Rain) View() string {
	var b strings.Builder
	for y, row := range r.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			if c.age < 0 {
				b.WriteByte(' ')
				continue
			}
			if c.age < len(r.shades) {
				b.WriteString(r.shades[c.age].Render(string(c.glyph)))
			} else {
				b.WriteRune(c.glyph)
			}
		}
	}
	return b.String()
}
