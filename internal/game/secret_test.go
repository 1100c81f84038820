package game

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator_Generate(t *testing.T) {
	gen := NewRandomGenerator()
	var seen [numColors]bool

	for i := 0; i < 500; i++ {
		s, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, s, PegCount)
		for _, c := range s {
			require.True(t, c.Valid())
			seen[c] = true
		}
	}

	for c, ok := range seen {
		assert.True(t, ok, "color %s never drawn", Color(c))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomGenerator_SourceFailure(t *testing.T) {
	_, err := NewRandomGeneratorFrom(failingReader{}).Generate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")

	// a short source runs dry part way through
	_, err = NewRandomGeneratorFrom(bytes.NewReader([]byte{1, 2})).Generate()
	assert.Error(t, err)
}
