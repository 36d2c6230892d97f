package visualizer

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// Labels are the texts drawn around a chart
type Labels struct {
	Title string
	X     string
	Y     string
}

// Renderer draws summaries to PNG files
type Renderer struct {
	style  Style
	logger *slog.Logger
}

// NewRenderer creates a renderer with an explicit style
func NewRenderer(style Style, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{style: style, logger: logger}
}

// Style returns the renderer's style
func (r *Renderer) Style() Style { return r.style }

func (r *Renderer) newPlot(l Labels) *plot.Plot {
	p := plot.New()
	p.Title.Text = l.Title
	p.Title.TextStyle.Font.Size = r.style.TitleSize
	p.Title.Padding = vg.Points(10)
	p.X.Label.Text = l.X
	p.Y.Label.Text = l.Y
	p.X.Label.TextStyle.Font.Size = r.style.LabelSize
	p.Y.Label.TextStyle.Font.Size = r.style.LabelSize
	p.X.Tick.Label.Font.Size = r.style.LabelSize
	p.Y.Tick.Label.Font.Size = r.style.LabelSize
	return p
}

func checkSeries(s domain.Series) error {
	if s.Len() == 0 {
		return errors.NewRenderError(fmt.Sprintf("series %s has no points", s.Name), nil)
	}
	for _, v := range s.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewRenderError(fmt.Sprintf("series %s has a non-finite value", s.Name), nil)
		}
	}
	return nil
}

// rotateX slants long category labels so they do not overlap
func rotateX(p *plot.Plot, labels []string) {
	long := len(labels) > 6
	for _, l := range labels {
		if len(l) > 8 {
			long = true
			break
		}
	}
	if long {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
}

func (r *Renderer) barWidth(n int) vg.Length {
	length := r.style.Width
	w := length * 0.6 / vg.Length(n)
	if w > vg.Points(60) {
		w = vg.Points(60)
	}
	if w < vg.Points(2) {
		w = vg.Points(2)
	}
	return w
}

// bars builds the bar layer and, when enabled, the value labels above it
func (r *Renderer) bars(s domain.Series, horizontal bool) ([]plot.Plotter, error) {
	if err := checkSeries(s); err != nil {
		return nil, err
	}
	values := plotter.Values(s.Values())
	n := len(values)
	if horizontal {
		// largest value on top
		reversed := make(plotter.Values, n)
		for i, v := range values {
			reversed[n-1-i] = v
		}
		values = reversed
	}

	bars, err := plotter.NewBarChart(values, r.barWidth(n))
	if err != nil {
		return nil, errors.NewRenderError("failed to build bar chart", err)
	}
	bars.Color = r.style.BarColor
	bars.LineStyle.Width = 0
	bars.Horizontal = horizontal
	layers := []plot.Plotter{bars}
	if !r.style.ShowValues {
		return layers, nil
	}

	xys := make(plotter.XYs, n)
	texts := make([]string, n)
	for i, v := range values {
		if horizontal {
			xys[i] = plotter.XY{X: v, Y: float64(i)}
		} else {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
		texts[i] = formatValue(v)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, errors.NewRenderError("failed to build value labels", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = r.style.LabelSize
		if horizontal {
			labels.TextStyle[i].YAlign = draw.YCenter
		} else {
			labels.TextStyle[i].XAlign = draw.XCenter
		}
	}
	if horizontal {
		labels.Offset = vg.Point{X: vg.Points(3)}
	} else {
		labels.Offset = vg.Point{Y: vg.Points(3)}
	}
	return append(layers, labels), nil
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// BarChart draws one vertical bar per point
func (r *Renderer) BarChart(s domain.Series, path string, l Labels) error {
	layers, err := r.bars(s, false)
	if err != nil {
		return err
	}
	p := r.newPlot(l)
	p.Add(layers...)
	p.NominalX(s.Labels()...)
	rotateX(p, s.Labels())
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return r.save(p, path)
}

// HorizontalBarChart draws one horizontal bar per point, first point on top
func (r *Renderer) HorizontalBarChart(s domain.Series, path string, l Labels) error {
	layers, err := r.bars(s, true)
	if err != nil {
		return err
	}
	p := r.newPlot(l)
	p.Add(layers...)
	labels := s.Labels()
	reversed := make([]string, len(labels))
	for i, name := range labels {
		reversed[len(labels)-1-i] = name
	}
	p.NominalY(reversed...)
	p.X.Min = 0
	return r.save(p, path)
}

// LineChart connects the points in order with markers
func (r *Renderer) LineChart(s domain.Series, path string, l Labels) error {
	if err := checkSeries(s); err != nil {
		return err
	}
	xys := make(plotter.XYs, s.Len())
	for i, v := range s.Values() {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.NewRenderError("failed to build line chart", err)
	}
	line.Color = r.style.LineColor
	line.Width = vg.Points(2)
	points.Color = r.style.LineColor

	p := r.newPlot(l)
	p.Add(plotter.NewGrid(), line, points)
	p.NominalX(s.Labels()...)
	rotateX(p, s.Labels())
	p.Y.Min = 0
	return r.save(p, path)
}

// grid adapts a cross-tab to plotter.GridXYZ. Row 0 is drawn on top.
type grid struct{ ct domain.CrossTab }

func (g grid) Dims() (c, r int)   { return len(g.ct.ColumnLabels), len(g.ct.RowLabels) }
func (g grid) Z(c, r int) float64 { return g.ct.Cells[len(g.ct.RowLabels)-1-r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// HeatMap draws a cross-tab as colored cells annotated with their values
func (r *Renderer) HeatMap(ct domain.CrossTab, path string, l Labels) error {
	if len(ct.RowLabels) == 0 || len(ct.ColumnLabels) == 0 {
		return errors.NewRenderError(fmt.Sprintf("cross-tab %s is empty", ct.Name), nil)
	}
	g := grid{ct: ct}
	hm := plotter.NewHeatMap(g, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}

	cols, rows := g.Dims()
	xys := make(plotter.XYs, 0, cols*rows)
	texts := make([]string, 0, cols*rows)
	for c := 0; c < cols; c++ {
		for row := 0; row < rows; row++ {
			xys = append(xys, plotter.XY{X: g.X(c), Y: g.Y(row)})
			texts = append(texts, formatValue(g.Z(c, row)))
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return errors.NewRenderError("failed to build heat map labels", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].Font.Size = r.style.LabelSize
		annotations.TextStyle[i].Color = color.Black
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].YAlign = draw.YCenter
	}

	p := r.newPlot(l)
	p.Add(hm, annotations)
	p.NominalX(ct.ColumnLabels...)
	rowNames := make([]string, rows)
	for i, name := range ct.RowLabels {
		rowNames[rows-1-i] = name
	}
	p.NominalY(rowNames...)
	rotateX(p, ct.ColumnLabels)
	return r.save(p, path)
}

// save draws p at the style's size and resolution and writes a PNG
func (r *Renderer) save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create chart directory", err).WithContext("path", path)
	}

	canvas := vgimg.NewWith(vgimg.UseWH(r.style.Width, r.style.Height), vgimg.UseDPI(r.style.DPI))
	p.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create chart file", err).WithContext("path", path)
	}
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		f.Close()
		return errors.NewRenderError("failed to encode chart", err).WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return errors.NewStorageError("failed to close chart file", err).WithContext("path", path)
	}

	r.logger.Debug("Chart written", slog.String("path", path))
	return nil
}
