package game

import (
	"fmt"
	"slices"
	"strings"
)

// PegCount is the number of pins in a secret and in every guess.
const PegCount = 5

// Color of a single pin.
type Color uint8

const (
	White Color = iota
	Pink
	Red
	Orange
	Yellow
	Green
	Blue
	Black

	numColors
)

var palette = [numColors]Color{White, Pink, Red, Orange, Yellow, Green, Blue, Black}

// AllColors lists every pin color a secret or guess may hold, in enum order.
func AllColors() []Color {
	return slices.Clone(palette[:])
}

var colorNames = [numColors]string{
	White:  "white",
	Pink:   "pink",
	Red:    "red",
	Orange: "orange",
	Yellow: "yellow",
	Green:  "green",
	Blue:   "blue",
	Black:  "black",
}

func (c Color) Valid() bool { return c < numColors }

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
	return colorNames[c]
}

// ParseColor maps a lowercase color name to its Color.
func ParseColor(name string) (Color, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for c, s := range colorNames {
		if s == n {
			return Color(c), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidColor, name)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColor, uint8(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Secret is the hidden sequence of pins a player tries to reproduce.
type Secret []Color

// Guess is one full submission of pins, one per position.
type Guess []Color

// ParseGuess converts color names into a Guess. Every slot must hold a color.
func ParseGuess(names []string) (Guess, error) {
	g := make(Guess, len(names))
	for i, n := range names {
		c, err := ParseColor(n)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		g[i] = c
	}
	return g, nil
}

func validatePins(pins []Color) error {
	for i, c := range pins {
		if !c.Valid() {
			return fmt.Errorf("%w: position %d holds %d", ErrInvalidColor, i, uint8(c))
		}
	}
	return nil
}
