package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is straight (non-premultiplied) RGBA.
type Color struct {
	R, G, B, A uint8
}

var Transparent = Color{}

func (c Color) IsTransparent() bool {
	return c.A == 0
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}

var namedColors = map[string]Color{
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"gray":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"lime":        {0, 255, 0, 255},
	"navy":        {0, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"transparent": {0, 0, 0, 0},
	"clear":       {0, 0, 0, 0},
}

// ParseColor accepts named colors, #rgb, #rrggbb, #rrggbbaa and
// rgb()/rgba() with 0-255 channels.
func ParseColor(val string) (Color, error) {
	val = strings.ToLower(strings.TrimSpace(val))
	if c, ok := namedColors[val]; ok {
		return c, nil
	}
	if strings.HasPrefix(val, "#") {
		return parseHexColor(val[1:])
	}
	if strings.HasPrefix(val, "rgb") {
		open := strings.IndexByte(val, '(')
		if open == -1 || !strings.HasSuffix(val, ")") {
			return Color{}, fmt.Errorf("malformed color %q", val)
		}
		parts := strings.Split(val[open+1:len(val)-1], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return Color{}, fmt.Errorf("malformed color %q", val)
		}
		ch := [4]uint8{0, 0, 0, 255}
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return Color{}, fmt.Errorf("invalid channel %q in %q", p, val)
			}
			ch[i] = uint8(n)
		}
		return Color{ch[0], ch[1], ch[2], ch[3]}, nil
	}
	return Color{}, fmt.Errorf("unknown color %q", val)
}

func parseHexColor(hex string) (Color, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("malformed hex color #%s", hex)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("malformed hex color #%s", hex)
	}
	return Color{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}
