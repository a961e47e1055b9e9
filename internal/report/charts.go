package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const chartDPI = 150

var (
	colorBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorGreen  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorRed    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorPurple = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	colorBrown  = color.RGBA{R: 140, G: 86, B: 75, A: 255}

	seriesPalette = []color.RGBA{colorBlue, colorOrange, colorPurple, colorBrown, colorGreen, colorRed}
)

type series struct {
	label  string
	ticks  []int // tick index of each value; nil means consecutive from 0
	values []float64
	color  color.RGBA
	fill   bool
}

type refLine struct {
	label string
	y     float64
	color color.RGBA
}

// chart describes one time-series panel. The x axis is the tick index.
type chart struct {
	title  string
	ylabel string
	series []series
	refs   []refLine
	ymax   float64 // fixed upper bound with a zero lower bound when > 0
	ticks  int     // when > 1, the x axis runs from tick 0 to ticks-1
}

// empty reports whether no series has a single point to draw.
func (c chart) empty() bool {
	for _, s := range c.series {
		if len(finitePoints(s.ticks, s.values)) > 0 {
			return false
		}
	}
	return true
}

// renderPNG draws the chart at the given physical size in millimetres.
func (c chart) renderPNG(widthMM, heightMM float64) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = "Sample"
	p.Y.Label.Text = c.ylabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, s := range c.series {
		pts := finitePoints(s.ticks, s.values)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.title, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1.2)
		if s.fill {
			fill := s.color
			fill.A = 60
			line.FillColor = fill
		}
		p.Add(line)
		p.Legend.Add(s.label, line)
	}

	for _, r := range c.refs {
		y := r.y
		ref := plotter.NewFunction(func(float64) float64 { return y })
		ref.Color = r.color
		ref.Width = vg.Points(1)
		ref.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(ref)
		p.Legend.Add(r.label, ref)
	}

	if c.ticks > 1 {
		p.X.Min = 0
		p.X.Max = float64(c.ticks - 1)
	}
	if c.ymax > 0 {
		p.Y.Min = 0
		p.Y.Max = c.ymax
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthMM)*vg.Millimeter, vg.Length(heightMM)*vg.Millimeter),
		vgimg.UseDPI(chartDPI),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.title, err)
	}
	return buf.Bytes(), nil
}

// finitePoints places each value at its tick index, dropping NaN and Inf.
// Without ticks the position in values is used.
func finitePoints(ticks []int, values []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		x := float64(i)
		if i < len(ticks) {
			x = float64(ticks[i])
		}
		pts = append(pts, plotter.XY{X: x, Y: v})
	}
	return pts
}

func paletteColor(i int) color.RGBA {
	return seriesPalette[i%len(seriesPalette)]
}
