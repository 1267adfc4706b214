package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/five82/lumen/internal/device"
)

// picker is an HSV color wheel flattened into three keyboard-driven bars.
type picker struct {
	hue float64 // degrees, [0, 360)
	sat float64 // [0, 1]
	val float64 // [0, 1]
}

// newPicker seeds the picker from a hex color, falling back to white.
func newPicker(hex string) picker {
	c, err := colorful.Hex(hex)
	if err != nil {
		return picker{val: 1}
	}
	h, s, v := c.Hsv()
	if math.IsNaN(h) {
		h = 0
	}
	return picker{hue: h, sat: s, val: v}
}

func (p picker) color() colorful.Color {
	return colorful.Hsv(p.hue, p.sat, p.val).Clamped()
}

// rgb returns the 8-bit sample sent to the lamp.
func (p picker) rgb() device.RGB {
	r, g, b := p.color().RGB255()
	return device.RGB{R: r, G: g, B: b}
}

func (p picker) hex() string {
	return p.color().Hex()
}

func (p *picker) shiftHue(delta float64) {
	p.hue = math.Mod(p.hue+delta, 360)
	if p.hue < 0 {
		p.hue += 360
	}
}

func (p *picker) shiftSat(delta float64) {
	p.sat = clampUnit(p.sat + delta)
}

func (p *picker) shiftVal(delta float64) {
	p.val = clampUnit(p.val + delta)
}

func clampUnit(v float64) float64 {
	// Snap float drift so repeated steps land on 0 and 1 exactly.
	v = math.Round(v*1000) / 1000
	return math.Min(1, math.Max(0, v))
}

// label describes the current sample, e.g. "H 210° S 80% V 100%  #33aaff".
func (p picker) label() string {
	return fmt.Sprintf("H %3.0f° S %3.0f%% V %3.0f%%  %s",
		p.hue, p.sat*100, p.val*100, p.hex())
}

// render draws the swatch and the hue, saturation and value bars.
func (p picker) render(theme Theme, width int) string {
	styles := theme.Styles()
	barWidth := max(width-6, 8)

	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(p.hex())).
		Width(4).
		Render("")

	bars := []string{
		"H " + p.bar(barWidth, p.hue/360, func(f float64) colorful.Color {
			return colorful.Hsv(f*360, 1, 1)
		}),
		"S " + p.bar(barWidth, p.sat, func(f float64) colorful.Color {
			return colorful.Hsv(p.hue, f, math.Max(p.val, 0.3))
		}),
		"V " + p.bar(barWidth, p.val, func(f float64) colorful.Color {
			return colorful.Hsv(p.hue, p.sat, f)
		}),
	}

	var b strings.Builder
	b.WriteString(swatch)
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(p.label()))
	b.WriteString("\n")
	for i, line := range bars {
		b.WriteString(styles.MutedText.Render(line[:2]))
		b.WriteString(line[2:])
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// bar renders a gradient of width cells with a marker at pos (0..1).
func (p picker) bar(width int, pos float64, at func(float64) colorful.Color) string {
	marker := int(math.Round(pos * float64(width-1)))
	var b strings.Builder
	for i := range width {
		f := float64(i) / float64(width-1)
		cell := lipgloss.NewStyle().Background(lipgloss.Color(at(f).Clamped().Hex()))
		if i == marker {
			b.WriteString(cell.Foreground(lipgloss.Color(markerColor(at(f)))).Render("┃"))
			continue
		}
		b.WriteString(cell.Render(" "))
	}
	return b.String()
}

// markerColor picks black or white for contrast against c.
func markerColor(c colorful.Color) string {
	l, _, _ := c.Clamped().Lab()
	if l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}
