// Package deck builds the shuffled card heap dealt to a room when its game
// starts.
package deck

import "math/rand/v2"

var colors = []string{"GREEN", "RED", "YELLOW", "BLUE"}

var values = []string{
	"0", "1", "2", "3", "4", "5", "6", "7",
	"HLOPCOPYT", "HAPEZH", "ZAHRAPIN", "PEREHRYK",
	wildValue,
}

// POLYSVIN is wild: it has no color and uses a fixed neutral suffix instead.
const (
	wildValue = "POLYSVIN"
	wildToken = "POLYSVIN_NONE"
)

// Size is the number of cards in a full heap: 13 values across 4 colors, two
// copies of each slot.
const Size = 104

// Generate returns a freshly shuffled heap. Every call produces a valid deck;
// the ordering differs per call.
func Generate() []string {
	cards := make([]string, 0, Size)
	for _, v := range values {
		if v == wildValue {
			for range colors {
				cards = append(cards, wildToken, wildToken)
			}
			continue
		}
		for _, c := range colors {
			token := v + "_" + c
			cards = append(cards, token, token)
		}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
