package game

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// SecretGenerator produces the hidden sequence for a new game.
type SecretGenerator interface {
	Generate() (Secret, error)
}

// GeneratorFunc adapts a plain function to SecretGenerator.
type GeneratorFunc func() (Secret, error)

func (f GeneratorFunc) Generate() (Secret, error) { return f() }

// RandomGenerator draws every pin independently and uniformly from all colors.
type RandomGenerator struct {
	rand io.Reader
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{rand: rand.Reader}
}

// NewRandomGeneratorFrom uses r as the entropy source.
func NewRandomGeneratorFrom(r io.Reader) *RandomGenerator {
	return &RandomGenerator{rand: r}
}

func (g *RandomGenerator) Generate() (Secret, error) {
	limit := big.NewInt(int64(len(palette)))
	s := make(Secret, PegCount)
	for i := range s {
		n, err := rand.Int(g.rand, limit)
		if err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		s[i] = palette[n.Int64()]
	}
	return s, nil
}
