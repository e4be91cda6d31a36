package loaders

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// vec3Value decodes a JSON [x, y, z] array
type vec3Value core.Vec3

func (v *vec3Value) UnmarshalJSON(data []byte) error {
	var xyz [3]float64
	if err := json.Unmarshal(data, &xyz); err != nil {
		return fmt.Errorf("expected [x, y, z]: %w", err)
	}
	*v = vec3Value(core.NewVec3(xyz[0], xyz[1], xyz[2]))
	return nil
}

// Vec3 returns the decoded vector
func (v vec3Value) Vec3() core.Vec3 {
	return core.Vec3(v)
}

// colorValue decodes either a "#rrggbb" hex string or an [r, g, b] array
// of linear components
type colorValue core.Color

func (c *colorValue) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		color, err := ParseColor(hex)
		if err != nil {
			return err
		}
		*c = colorValue(color)
		return nil
	}

	var rgb [3]float64
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("expected hex string or [r, g, b]: %w", err)
	}
	*c = colorValue(core.NewColor(rgb[0], rgb[1], rgb[2]))
	return nil
}

// Color returns the decoded color
func (c colorValue) Color() core.Color {
	return core.Color(c)
}

// ParseColor parses a hex color such as "#ff8800" or "#f80"
func ParseColor(s string) (core.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return core.Black, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c = c.Clamped()
	return core.NewColor(c.R, c.G, c.B), nil
}
