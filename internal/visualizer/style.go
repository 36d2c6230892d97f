package visualizer

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot/vg"

	"trafficcli/internal/config"
	"trafficcli/internal/errors"
)

// Style carries every visual setting a chart needs. Renderers never read
// global plotting state; two renderers with different styles can draw
// concurrently.
type Style struct {
	Width      vg.Length
	Height     vg.Length
	DPI        int
	TitleSize  vg.Length
	LabelSize  vg.Length
	BarColor   color.Color
	LineColor  color.Color
	ShowValues bool
}

// DefaultStyle mirrors config.Default().Chart
func DefaultStyle() Style {
	return Style{
		Width:     25 * vg.Centimeter,
		Height:    15 * vg.Centimeter,
		DPI:       96,
		TitleSize: vg.Points(14),
		LabelSize: vg.Points(10),
		BarColor:  color.RGBA{R: 0x4C, G: 0x72, B: 0xB0, A: 0xFF},
		LineColor: color.RGBA{R: 0xDD, G: 0x84, B: 0x52, A: 0xFF},
	}
}

// StyleFromConfig converts the chart section of the configuration
func StyleFromConfig(cfg config.ChartConfig) (Style, error) {
	bar, err := ParseHexColor(cfg.BarColor)
	if err != nil {
		return Style{}, err
	}
	line, err := ParseHexColor(cfg.LineColor)
	if err != nil {
		return Style{}, err
	}
	return Style{
		Width:      vg.Length(cfg.WidthCM) * vg.Centimeter,
		Height:     vg.Length(cfg.HeightCM) * vg.Centimeter,
		DPI:        cfg.DPI,
		TitleSize:  vg.Points(cfg.TitleSize),
		LabelSize:  vg.Points(cfg.LabelSize),
		BarColor:   bar,
		LineColor:  line,
		ShowValues: cfg.ShowValues,
	}, nil
}

// ParseHexColor reads #RGB or #RRGGBB
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xFF}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var err error
	switch len(hex) {
	case 6:
		_, err = fmt.Sscanf(hex, "%2x%2x%2x", &c.R, &c.G, &c.B)
	case 3:
		_, err = fmt.Sscanf(hex, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("want 3 or 6 hex digits")
	}
	if err != nil {
		return color.RGBA{}, errors.NewConfigError(fmt.Sprintf("invalid color %q", s), err)
	}
	return c, nil
}
