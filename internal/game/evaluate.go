package game

import "fmt"

// Evaluate scores guess against secret, one hint per guess position.
//
// Exact matches are taken first. The remaining pins are then matched by color
// against what is left of the secret, in positional order, each match using
// up one secret pin. A color therefore earns at most
// min(count in guess, count in secret) non-absent hints.
func Evaluate(guess Guess, secret Secret) ([]Hint, error) {
	if len(guess) != len(secret) {
		return nil, fmt.Errorf("%w: guess has %d pins, secret has %d", ErrLengthMismatch, len(guess), len(secret))
	}
	if err := validatePins(guess); err != nil {
		return nil, fmt.Errorf("guess: %w", err)
	}
	if err := validatePins(secret); err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}

	hints := make([]Hint, len(guess))

	// unmatched secret pins per color
	var remaining [numColors]int

	for i := range guess {
		if guess[i] == secret[i] {
			hints[i] = HintColorPos
			continue
		}
		remaining[secret[i]]++
	}

	for i, c := range guess {
		if hints[i] == HintColorPos {
			continue
		}
		if remaining[c] > 0 {
			hints[i] = HintColor
			remaining[c]--
		} else {
			hints[i] = HintAbsent
		}
	}

	return hints, nil
}
