// Package chart renders small line charts to PNG for embedding in pages.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Series is one named line across all categories. Values may contain NaN
// to leave a gap.
type Series struct {
	Name   string
	Color  color.RGBA
	Values []float64
}

// LineChart describes a category-axis line chart.
type LineChart struct {
	Title      string
	XTitle     string
	YTitle     string
	Categories []string
	Series     []Series
	Width      int
	Height     int
}

const (
	marginLeft   = 64
	marginRight  = 24
	marginTop    = 48
	marginBottom = 56
	legendRowH   = 20
	legendSwatch = 18
	strokeWidth  = 2.5
	markerRadius = 4
)

var (
	face = basicfont.Face7x13

	colorBackground = color.RGBA{255, 255, 255, 255}
	colorGrid       = color.RGBA{230, 233, 238, 255}
	colorAxis       = color.RGBA{120, 125, 135, 255}
	colorText       = color.RGBA{40, 44, 52, 255}
	colorMuted      = color.RGBA{100, 106, 118, 255}
)

// Render draws c and encodes it as PNG.
func Render(c LineChart) ([]byte, error) {
	if c.Width <= marginLeft+marginRight || c.Height <= marginTop+marginBottom {
		return nil, fmt.Errorf("chart size %dx%d too small", c.Width, c.Height)
	}
	if len(c.Categories) == 0 {
		return nil, fmt.Errorf("chart has no categories")
	}
	for _, s := range c.Series {
		if len(s.Values) != len(c.Categories) {
			return nil, fmt.Errorf("series %q has %d values for %d categories", s.Name, len(s.Values), len(c.Categories))
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	legendRows := layoutLegend(c.Series, c.Width)
	plot := image.Rect(
		marginLeft,
		marginTop,
		c.Width-marginRight,
		c.Height-marginBottom-len(legendRows)*legendRowH,
	)
	if plot.Dy() < 40 {
		return nil, fmt.Errorf("chart size %dx%d too small for legend", c.Width, c.Height)
	}

	lo, hi, step := yScale(c.Series)
	yPos := func(v float64) float64 {
		return float64(plot.Max.Y) - (v-lo)/(hi-lo)*float64(plot.Dy())
	}
	xPos := func(i int) float64 {
		return float64(plot.Min.X) + (float64(i)+0.5)*float64(plot.Dx())/float64(len(c.Categories))
	}

	// Grid and y tick labels.
	for v := lo; v <= hi+step/2; v += step {
		y := int(math.Round(yPos(v)))
		fillRect(img, image.Rect(plot.Min.X, y, plot.Max.X, y+1), colorGrid)
		label := formatTick(v)
		drawText(img, label, plot.Min.X-8-textWidth(label), y+4, colorMuted)
	}

	// Axes.
	fillRect(img, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+1, plot.Max.Y+1), colorAxis)
	fillRect(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), colorAxis)

	// Category labels.
	for i, cat := range c.Categories {
		x := int(math.Round(xPos(i)))
		fillRect(img, image.Rect(x, plot.Max.Y, x+1, plot.Max.Y+5), colorAxis)
		drawText(img, cat, x-textWidth(cat)/2, plot.Max.Y+18, colorText)
	}

	for _, s := range c.Series {
		var prevX, prevY float64
		havePrev := false
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				havePrev = false
				continue
			}
			x, y := xPos(i), yPos(v)
			if havePrev {
				strokeLine(img, prevX, prevY, x, y, strokeWidth, s.Color)
			}
			prevX, prevY, havePrev = x, y, true
		}
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			fillCircle(img, xPos(i), yPos(v), markerRadius, s.Color)
		}
	}

	if c.Title != "" {
		drawText(img, c.Title, (c.Width-textWidth(c.Title))/2, 24, colorText)
	}
	if c.YTitle != "" {
		drawText(img, c.YTitle, 8, marginTop-10, colorMuted)
	}
	if c.XTitle != "" {
		drawText(img, c.XTitle, plot.Min.X+(plot.Dx()-textWidth(c.XTitle))/2, plot.Max.Y+38, colorMuted)
	}

	legendTop := plot.Max.Y + marginBottom + 12
	for r, row := range legendRows {
		x := (c.Width - row.width) / 2
		y := legendTop + r*legendRowH
		for _, s := range row.series {
			strokeLine(img, float64(x), float64(y-4), float64(x+legendSwatch), float64(y-4), strokeWidth, s.Color)
			fillCircle(img, float64(x+legendSwatch/2), float64(y-4), markerRadius-1, s.Color)
			drawText(img, s.Name, x+legendSwatch+6, y, colorText)
			x += legendEntryWidth(s)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

type legendRow struct {
	series []Series
	width  int
}

func legendEntryWidth(s Series) int {
	return legendSwatch + 6 + textWidth(s.Name) + 20
}

// layoutLegend wraps legend entries into rows that fit the chart width.
func layoutLegend(series []Series, width int) []legendRow {
	var rows []legendRow
	var cur legendRow
	avail := width - marginLeft - marginRight
	for _, s := range series {
		w := legendEntryWidth(s)
		if len(cur.series) > 0 && cur.width+w > avail {
			rows = append(rows, cur)
			cur = legendRow{}
		}
		cur.series = append(cur.series, s)
		cur.width += w
	}
	if len(cur.series) > 0 {
		rows = append(rows, cur)
	}
	return rows
}

// yScale returns a padded value range that always includes zero, snapped to
// a readable tick step.
func yScale(series []Series) (lo, hi, step float64) {
	lo, hi = 0, 0
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	step = niceStep((hi - lo) / 5)
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	if hi == lo {
		hi = lo + step
	}
	return lo, hi, step
}

func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	pow := math.Pow(10, exp)
	switch frac := raw / pow; {
	case frac <= 1:
		return pow
	case frac <= 2:
		return 2 * pow
	case frac <= 5:
		return 5 * pow
	default:
		return 10 * pow
	}
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-9 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// strokeLine draws an anti-aliased segment as a thin quad.
func strokeLine(img *image.RGBA, x0, y0, x1, y1, width float64, col color.Color) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2

	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x0-nx), float32(y0-ny))
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(col), image.Point{})
}

func fillCircle(img *image.RGBA, cx, cy, r float64, col color.Color) {
	const segments = 20
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		z.LineTo(float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a)))
	}
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(col), image.Point{})
}

// drawText draws text with its baseline at y.
func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}
