package style

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/teranos/graphstyle/errors"
)

// Text colors chosen against a label background
const (
	TextOnDark  = "#FFFFFF"
	TextOnLight = "#000000"
)

// darkThreshold is on the 0..255 scale of the weighted channel sum
const darkThreshold = 128

// ParseColor accepts #rgb, #rrggbb and CSS color names
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return colorful.Color{}, errors.NewInvalidRequestError("empty color")
	}

	if strings.HasPrefix(s, "#") {
		if len(s) != 4 && len(s) != 7 {
			return colorful.Color{}, errors.NewInvalidRequestError("color %q: expected #rgb or #rrggbb", s)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, errors.Wrapf(errors.ErrInvalidRequest, "color %q: %v", s, err)
		}
		return c, nil
	}

	rgba, ok := colornames.Map[s]
	if !ok {
		return colorful.Color{}, errors.NewInvalidRequestError("unknown color name %q", s)
	}
	c, _ := colorful.MakeColor(rgba)
	return c, nil
}

// IsDark reports whether white text reads better than black on color.
// Unparseable colors count as light.
func IsDark(color string) bool {
	c, err := ParseColor(color)
	if err != nil {
		return false
	}
	luminance := (0.2126*c.R + 0.7152*c.G + 0.0722*c.B) * 255
	return luminance < darkThreshold
}

// ContrastText returns the text color for a label drawn on background
func ContrastText(background string) string {
	if IsDark(background) {
		return TextOnDark
	}
	return TextOnLight
}
