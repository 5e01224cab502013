package deck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateComposition(t *testing.T) {
	cards := Generate()
	require.Len(t, cards, Size)

	counts := map[string]int{}
	for _, c := range cards {
		counts[c]++
	}

	// 48 colored tokens appear twice; the wild collapses its four slots
	// into one token that appears eight times.
	assert.Len(t, counts, 49)
	for token, n := range counts {
		if token == "POLYSVIN_NONE" {
			continue
		}
		assert.Equalf(t, 2, n, "token %s should appear exactly twice", token)
	}

	// The wild value carries the neutral suffix, everything else a color.
	wilds := 0
	for _, c := range cards {
		if c == "POLYSVIN_NONE" {
			wilds++
			continue
		}
		parts := strings.Split(c, "_")
		require.Len(t, parts, 2, "unexpected token %s", c)
		assert.Contains(t, []string{"GREEN", "RED", "YELLOW", "BLUE"}, parts[1])
	}
	assert.Equal(t, 8, wilds)
}

func TestGenerateIsReinvocable(t *testing.T) {
	// Every call must yield a full, valid deck.
	for i := 0; i < 3; i++ {
		cards := Generate()
		require.Len(t, cards, Size)

		counts := map[string]int{}
		for _, c := range cards {
			counts[c]++
		}
		require.Len(t, counts, 49)
	}
}
