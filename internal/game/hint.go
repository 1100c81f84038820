package game

import "fmt"

// Hint is the feedback for one submitted pin.
type Hint uint8

const (
	// HintAbsent: no unmatched pin of this color is left in the secret.
	HintAbsent Hint = iota
	// HintColor: the color is in the secret, at another position.
	HintColor
	// HintColorPos: color and position both match.
	HintColorPos
)

func (h Hint) String() string {
	switch h {
	case HintAbsent:
		return "absent"
	case HintColor:
		return "color"
	case HintColorPos:
		return "color_pos"
	}
	return fmt.Sprintf("Hint(%d)", uint8(h))
}

func (h Hint) MarshalText() ([]byte, error) {
	if h > HintColorPos {
		return nil, fmt.Errorf("unknown hint %d", uint8(h))
	}
	return []byte(h.String()), nil
}

func (h *Hint) UnmarshalText(b []byte) error {
	switch string(b) {
	case "absent":
		*h = HintAbsent
	case "color":
		*h = HintColor
	case "color_pos":
		*h = HintColorPos
	default:
		return fmt.Errorf("unknown hint %q", b)
	}
	return nil
}

// Marks is the unordered view of a hint row: dark marks for exact matches,
// light marks for right-color-wrong-place. Absent pins draw nothing.
type Marks struct {
	Exact int `json:"exact"`
	Color int `json:"color"`
}

func Summarize(hints []Hint) Marks {
	var m Marks
	for _, h := range hints {
		switch h {
		case HintColorPos:
			m.Exact++
		case HintColor:
			m.Color++
		}
	}
	return m
}

func allExact(hints []Hint) bool {
	for _, h := range hints {
		if h != HintColorPos {
			return false
		}
	}
	return len(hints) > 0
}
