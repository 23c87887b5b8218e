package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 1000
	Height = 600

	marginLeft   = 90
	marginRight  = 30
	marginTop    = 70
	marginBottom = 130

	gridLines = 5
)

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	axisColor  = color.RGBA{R: 51, G: 65, B: 85, A: 255}
	gridColor  = color.RGBA{R: 226, G: 232, B: 240, A: 255}
	barColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	textColor  = color.RGBA{R: 15, G: 23, B: 42, A: 255}
)

var (
	fontLoadOnce sync.Once
	fontLoadErr  error
	regularFont  *opentype.Font
)

// Bar is one labelled value
type Bar struct {
	Label string
	Value float64
}

// BarChart describes a vertical bar chart. Bars are drawn in the given order.
type BarChart struct {
	Title  string
	YLabel string
	Bars   []Bar
	// Max fixes the top of the value axis; zero scales to the largest bar
	Max float64
	// Decimals is the precision of value labels
	Decimals int
}

// Render draws the chart onto a new RGBA canvas
func Render(c BarChart) (*image.RGBA, error) {
	if err := ensureFontLoaded(); err != nil {
		return nil, err
	}

	titleFace, err := newFace(20)
	if err != nil {
		return nil, fmt.Errorf("create title font face: %w", err)
	}
	defer closeFace(titleFace)
	labelFace, err := newFace(13)
	if err != nil {
		return nil, fmt.Errorf("create label font face: %w", err)
	}
	defer closeFace(labelFace)

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fillRect(img, img.Bounds(), background)

	plot := image.Rect(marginLeft, marginTop, Width-marginRight, Height-marginBottom)

	drawCentered(img, titleFace, c.Title, Width/2, marginTop/2+8, textColor)
	if c.YLabel != "" {
		drawText(img, labelFace, c.YLabel, 10, marginTop-16, textColor)
	}

	top := axisMax(c)
	for i := 0; i <= gridLines; i++ {
		value := top * float64(i) / gridLines
		y := plot.Max.Y - int(math.Round(float64(plot.Dy())*float64(i)/gridLines))
		if i > 0 {
			fillRect(img, image.Rect(plot.Min.X+1, y, plot.Max.X, y+1), gridColor)
		}
		label := formatValue(value, c.Decimals)
		drawText(img, labelFace, label, plot.Min.X-8-textWidth(labelFace, label), y+5, textColor)
	}

	if len(c.Bars) == 0 {
		drawCentered(img, labelFace, "No data", (plot.Min.X+plot.Max.X)/2, (plot.Min.Y+plot.Max.Y)/2, textColor)
	}

	slot := 0
	if len(c.Bars) > 0 {
		slot = plot.Dx() / len(c.Bars)
	}
	for i, bar := range c.Bars {
		x0 := plot.Min.X + i*slot
		pad := slot / 5
		height := 0
		if top > 0 && bar.Value > 0 {
			height = int(math.Round(float64(plot.Dy()) * math.Min(bar.Value, top) / top))
		}
		fillRect(img, image.Rect(x0+pad, plot.Max.Y-height, x0+slot-pad, plot.Max.Y), barColor)

		center := x0 + slot/2
		drawCentered(img, labelFace, formatValue(bar.Value, c.Decimals), center, plot.Max.Y-height-6, textColor)
		label := fitWithEllipsis(labelFace, bar.Label, slot-4)
		drawCentered(img, labelFace, label, center, plot.Max.Y+20, textColor)
	}

	// axes
	fillRect(img, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+1, plot.Max.Y+1), axisColor)
	fillRect(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), axisColor)

	return img, nil
}

// Encode renders the chart as PNG into w
func Encode(w io.Writer, c BarChart) error {
	img, err := Render(c)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WriteFile renders the chart and replaces path with the PNG
func WriteFile(path string, c BarChart) error {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func axisMax(c BarChart) float64 {
	if c.Max > 0 {
		return c.Max
	}
	top := 0.0
	for _, bar := range c.Bars {
		top = math.Max(top, bar.Value)
	}
	if top == 0 {
		return 1
	}
	// leave headroom for the value labels
	return niceCeil(top * 1.1)
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten
func niceCeil(v float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}

func formatValue(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func ensureFontLoaded() error {
	fontLoadOnce.Do(func() {
		regularFont, fontLoadErr = opentype.Parse(goregular.TTF)
		if fontLoadErr != nil {
			fontLoadErr = fmt.Errorf("parse Go Regular: %w", fontLoadErr)
		}
	})
	return fontLoadErr
}

func newFace(size float64) (font.Face, error) {
	return opentype.NewFace(regularFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func closeFace(face font.Face) {
	if closer, ok := face.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func fillRect(img draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func drawText(img draw.Image, face font.Face, text string, x, y int, c color.Color) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

func drawCentered(img draw.Image, face font.Face, text string, cx, y int, c color.Color) {
	drawText(img, face, text, cx-textWidth(face, text)/2, y, c)
}

func fitWithEllipsis(face font.Face, text string, maxWidth int) string {
	const ellipsis = "..."
	if textWidth(face, text) <= maxWidth {
		return text
	}
	if textWidth(face, ellipsis) > maxWidth {
		return ""
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func textWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}
