package analysis

import (
	"errors"
	"sort"
	"strings"

	"github.com/san-kum/shatterblade/internal/metrics"
)

var ErrUnknownSeries = errors.New("analysis: unknown series")

// Series reads one value from a sample.
type Series func(metrics.Sample) float64

var (
	Time      Series = func(s metrics.Sample) float64 { return s.Time }
	Locked    Series = func(s metrics.Sample) float64 { return float64(s.Locked) }
	Reforming Series = func(s metrics.Sample) float64 { return float64(s.Reforming) }
	Free      Series = func(s metrics.Sample) float64 { return float64(s.Free) }
	Residual  Series = func(s metrics.Sample) float64 { return s.Residual }
)

var seriesByName = map[string]Series{
	"time":      Time,
	"locked":    Locked,
	"reforming": Reforming,
	"free":      Free,
	"residual":  Residual,
}

func GetSeries(name string) (Series, error) {
	s, ok := seriesByName[name]
	if !ok {
		return nil, ErrUnknownSeries
	}
	return s, nil
}

func SeriesNames() []string {
	names := make([]string, 0, len(seriesByName))
	for n := range seriesByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (f Series) Values(samples []metrics.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = f(s)
	}
	return out
}

type Point struct{ X, Y float64 }

// Portrait holds one series plotted against another.
type Portrait struct {
	Points []Point
}

func NewPortrait(samples []metrics.Sample, x, y Series) *Portrait {
	p := &Portrait{Points: make([]Point, len(samples))}
	for i, s := range samples {
		p.Points[i] = Point{X: x(s), Y: y(s)}
	}
	return p
}

// ASCII draws the portrait on a width x height grid with axes where zero is
// in range.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX, rangeY = maxX-minX, maxY-minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if c >= 0 && c < width && canvas[r][c] == ' ' {
				canvas[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if r >= 0 && r < height && canvas[r][c] == ' ' {
				canvas[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}
