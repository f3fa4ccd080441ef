package viz

import "strings"

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid of Width x Height cells.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	marks         map[[2]int]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h), marks: make(map[[2]int]rune)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in dot coordinates: (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	col, row, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) cell(x, y int) (col, row int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	return col, row, col < c.Width && row < c.Height
}

// Mark replaces the cell holding dot (x, y) with a glyph.
func (c *Canvas) Mark(x, y int, glyph rune) {
	col, row, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.marks[[2]int{col, row}] = glyph
}

// Marked reports the glyph marked on cell (col, row), if any.
func (c *Canvas) Marked(col, row int) (rune, bool) {
	g, ok := c.marks[[2]int{col, row}]
	return g, ok
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	clear(c.marks)
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Rows renders each cell row, letting style color the marked cells.
func (c *Canvas) Rows(style func(glyph rune) string) []string {
	rows := make([]string, len(c.Grid))
	for r, row := range c.Grid {
		var b strings.Builder
		for col, cell := range row {
			if g, ok := c.marks[[2]int{col, r}]; ok {
				b.WriteString(style(g))
				continue
			}
			b.WriteRune(cell)
		}
		rows[r] = b.String()
	}
	return rows
}

func (c *Canvas) String() string {
	return strings.Join(c.Rows(func(g rune) string { return string(g) }), "\n")
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
