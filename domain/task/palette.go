package task

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultColor is applied when a create request omits the color.
const DefaultColor = "blue"

// DefaultColors is the canonical palette.
var DefaultColors = []string{"red", "blue", "green", "yellow", "purple", "pink"}

// Palette is the closed set of colors a task may carry.
type Palette struct {
	names    []string
	index    map[string]struct{}
	fallback string
}

// NewPalette builds a palette from names. The fallback color must be one of
// them.
func NewPalette(names []string, fallback string) (Palette, error) {
	if len(names) == 0 {
		return Palette{}, errors.New("palette must contain at least one color")
	}

	p := Palette{
		names:    make([]string, 0, len(names)),
		index:    make(map[string]struct{}, len(names)),
		fallback: fallback,
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return Palette{}, errors.New("palette contains a blank color")
		}
		if _, dup := p.index[name]; dup {
			return Palette{}, fmt.Errorf("palette contains duplicate color %q", name)
		}
		p.index[name] = struct{}{}
		p.names = append(p.names, name)
	}

	if !p.Contains(fallback) {
		return Palette{}, fmt.Errorf("default color %q is not in the palette", fallback)
	}
	return p, nil
}

// DefaultPalette returns the canonical palette with blue as default.
func DefaultPalette() Palette {
	p, err := NewPalette(DefaultColors, DefaultColor)
	if err != nil {
		panic(err)
	}
	return p
}

// Contains reports whether name is a recognized color.
func (p Palette) Contains(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Default returns the color used when none is supplied.
func (p Palette) Default() string {
	return p.fallback
}

// Names returns the colors in declaration order.
func (p Palette) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// String joins the colors with ", ".
func (p Palette) String() string {
	return strings.Join(p.names, ", ")
}
