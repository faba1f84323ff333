package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// rgba is a color with channels in [0,1].
type rgba struct {
	R, G, B, A float64
}

// parseColor understands hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba()
// and hsl()/hsla() notations, with comma or space separated arguments.
func parseColor(s string) (rgba, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		args, ok := colorArgs(s, "rgba", "rgb")
		if !ok || len(args) < 3 {
			return rgba{}, false
		}
		var ch [3]float64
		for i := 0; i < 3; i++ {
			v, ok := channel(args[i], 255)
			if !ok {
				return rgba{}, false
			}
			ch[i] = v
		}
		a, ok := alpha(args[3:])
		return rgba{ch[0], ch[1], ch[2], a}, ok
	case strings.HasPrefix(s, "hsl"):
		args, ok := colorArgs(s, "hsla", "hsl")
		if !ok || len(args) < 3 {
			return rgba{}, false
		}
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return rgba{}, false
		}
		sat, ok1 := channel(args[1], 100)
		light, ok2 := channel(args[2], 100)
		if !ok1 || !ok2 {
			return rgba{}, false
		}
		a, ok := alpha(args[3:])
		r, g, b := hslToRGB(h, sat, light)
		return rgba{r, g, b, a}, ok
	}
	return rgba{}, false
}

func parseHex(h string) (rgba, bool) {
	switch len(h) {
	case 3, 4:
		var long strings.Builder
		for _, c := range h {
			long.WriteRune(c)
			long.WriteRune(c)
		}
		h = long.String()
	case 6, 8:
	default:
		return rgba{}, false
	}
	n, err := strconv.ParseUint(h, 16, 64)
	if err != nil {
		return rgba{}, false
	}
	if len(h) == 6 {
		n = n<<8 | 0xff
	}
	return rgba{
		R: float64(n>>24&0xff) / 255,
		G: float64(n>>16&0xff) / 255,
		B: float64(n>>8&0xff) / 255,
		A: float64(n&0xff) / 255,
	}, true
}

// colorArgs splits "fn(a, b, c / d)" into its arguments.
func colorArgs(s string, names ...string) ([]string, bool) {
	for _, name := range names {
		if !strings.HasPrefix(s, name+"(") {
			continue
		}
		if !strings.HasSuffix(s, ")") {
			return nil, false
		}
		inner := s[len(name)+1 : len(s)-1]
		inner = strings.NewReplacer(",", " ", "/", " ").Replace(inner)
		return strings.Fields(inner), true
	}
	return nil, false
}

// channel parses a number or percentage, scaled to [0,1] by scale.
func channel(s string, scale float64) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp(v / 100), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v / scale), true
}

func alpha(rest []string) (float64, bool) {
	if len(rest) == 0 {
		return 1, true
	}
	if strings.HasSuffix(rest[0], "%") {
		return channel(rest[0], 100)
	}
	return channel(rest[0], 1)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

func byte255(v float64) uint8 {
	return uint8(math.Round(clamp(v) * 255))
}

// hex formats the color as #rrggbb, or #rrggbbaa when translucent.
func (c rgba) hex() string {
	if byte255(c.A) == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", byte255(c.R), byte255(c.G), byte255(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", byte255(c.R), byte255(c.G), byte255(c.B), byte255(c.A))
}

// argb formats the color as 0xAARRGGBB, the literal Compose and Flutter use.
func (c rgba) argb() string {
	return fmt.Sprintf("0x%02X%02X%02X%02X", byte255(c.A), byte255(c.R), byte255(c.G), byte255(c.B))
}

// rounded returns the channels rounded to three decimals.
func (c rgba) rounded() rgba {
	r := func(v float64) float64 { return math.Round(v*1000) / 1000 }
	return rgba{r(c.R), r(c.G), r(c.B), r(c.A)}
}

// IsColor reports whether s is a hex, rgb() or hsl() color.
func IsColor(s string) bool {
	_, ok := parseColor(s)
	return ok
}
