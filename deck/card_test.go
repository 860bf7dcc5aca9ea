package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCard(t *testing.T) {
	cases := []struct {
		name     string
		card     Card
		expected string
	}{
		{"Lowest rank", Card(1), "1"},
		{"Double digit rank", Card(12), "12"},
		{"Empty slot", NoCard, "-"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, c.card.String())
		})
	}

	t.Run("counts skip empty slots", func(t *testing.T) {
		counts := Counts([]Card{1, NoCard, 1, 3})
		assert.Equal(t, map[Card]int{1: 2, 3: 1}, counts)
	})

	t.Run("max rank", func(t *testing.T) {
		assert.Equal(t, Card(7), MaxRank([]Card{3, 7, 2}))
		assert.Equal(t, NoCard, MaxRank(nil))
	})
}
