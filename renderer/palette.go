// Package renderer draws the star field with raylib.
package renderer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/systems"
)

// Palette maps mass bands to colours, lightest band first.
type Palette struct {
	bands []rl.Color
}

// NewPalette parses hex colours ("#rrggbb" or "#rrggbbaa"). An empty list
// yields a single white band.
func NewPalette(hex []string) (*Palette, error) {
	if len(hex) == 0 {
		return &Palette{bands: []rl.Color{rl.White}}, nil
	}
	if len(hex) > math.MaxUint8+1 {
		return nil, fmt.Errorf("palette: %d colours, at most %d bands", len(hex), math.MaxUint8+1)
	}
	p := &Palette{bands: make([]rl.Color, len(hex))}
	for i, h := range hex {
		c, err := ParseHexColor(h)
		if err != nil {
			return nil, fmt.Errorf("palette band %d: %w", i, err)
		}
		p.bands[i] = c
	}
	return p, nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa". The leading # is optional.
func ParseHexColor(s string) (rl.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return rl.Color{}, fmt.Errorf("colour %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rl.Color{}, fmt.Errorf("colour %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return rl.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Bands returns the number of colour bands.
func (p *Palette) Bands() int {
	return len(p.bands)
}

// Color returns the colour of a band, clamping out-of-range indices.
func (p *Palette) Color(band uint8) rl.Color {
	if int(band) >= len(p.bands) {
		return p.bands[len(p.bands)-1]
	}
	return p.bands[band]
}

// BandFor places mass into one of n equal-width bands across r. Masses
// outside r fall into the first or last band.
func BandFor(mass float64, r systems.Range, n int) uint8 {
	if n <= 1 {
		return 0
	}
	span := r.Max - r.Min
	if span <= 0 {
		if mass > r.Max {
			return uint8(n - 1)
		}
		return 0
	}
	t := (mass - r.Min) / span
	band := int(t * float64(n))
	return uint8(max(0, min(band, n-1)))
}

// StarRadius returns the draw radius in world units. The radius grows with
// the square root of normalised mass so area tracks mass.
func StarRadius(mass float64, r systems.Range, base, scale float64) float32 {
	t := 0.0
	if r.Max > 0 {
		t = math.Max(mass, 0) / r.Max
	}
	return float32(base + scale*math.Sqrt(t))
}
