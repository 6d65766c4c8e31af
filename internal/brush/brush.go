// Package brush owns the freeform/paint stroke configuration. The render
// surface does not apply a separate opacity multiplier to strokes, so an
// opacity below 1 has to be baked into the color itself as rgba().
package brush

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"
)

// Settings is what the toolbar hands over when the user adjusts the brush.
type Settings struct {
	Width   float64
	Color   string // hex, e.g. "#aabbcc"
	Opacity float64
}

// Brush is the active stroke configuration applied to new paint strokes.
type Brush struct {
	mu      sync.RWMutex
	width   float64
	color   string
	opacity float64
}

func New() *Brush {
	return &Brush{width: 4, color: "#000000", opacity: 1}
}

// Configure applies the settings. When opacity < 1 the hex color is
// converted to an alpha-bearing rgba() string before assignment.
func (b *Brush) Configure(s Settings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.Width > 0 {
		b.width = s.Width
	}
	b.opacity = s.Opacity
	if s.Opacity < 1 {
		b.color = HexToRGBA(s.Color, s.Opacity)
	} else {
		b.color = s.Color
	}
}

func (b *Brush) Width() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width
}

func (b *Brush) Color() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.color
}

func (b *Brush) Opacity() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opacity
}

// HexToRGBA converts "#rgb" or "#rrggbb" plus an alpha into an
// "rgba(r,g,b,a)" string. Unparseable input falls back to opaque black
// with the requested alpha.
func HexToRGBA(hex string, alpha float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		r, g, b = 0, 0, 0
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b,
		strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ParseColor turns a stored color string ("#rrggbb", "#rgb" or
// "rgba(r,g,b,a)") into a color.Color. Unknown strings come back black so
// a bad value never breaks a redraw.
func ParseColor(s string) color.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if r, g, b, ok := parseHex(s); ok {
			return color.NRGBA{R: r, G: g, B: b, A: 255}
		}
		return color.NRGBA{A: 255}
	}
	if strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(s, "rgba("), ")"), ",")
		if len(parts) == 4 {
			r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
			g, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
			b, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
			a, err4 := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err1 == nil && err2 == nil && err3 == nil && err4 == nil {
				return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a * 255)}
			}
		}
	}
	return color.NRGBA{A: 255}
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
