package deck

import (
	"math/rand"
	"sort"
)

// Deck represents a deck of cards
type Deck []Card

// New creates a deck from a rank multiset. Ranks must be positive.
func New(composition []int) Deck {
	cards := make(Deck, 0, len(composition))
	for _, rank := range composition {
		cards = append(cards, Card(rank))
	}
	return cards
}

// Standard returns the composition 1..maxRank with copies of each rank
func Standard(maxRank, copies int) []int {
	composition := []int{}
	for rank := 1; rank <= maxRank; rank++ {
		for i := 0; i < copies; i++ {
			composition = append(composition, rank)
		}
	}
	return composition
}

// Shuffle shuffles the deck of cards. The same rng state gives the same order.
func (d Deck) Shuffle(rng *rand.Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Deal deals n number of cards from the deck, until it is empty
func (d *Deck) Deal(n int) []Card {
	numCardsInDeck := len(*d)
	if n < 0 || n > numCardsInDeck {
		return []Card{}
	}
	startingIndex := numCardsInDeck - n
	dealt := make([]Card, n)
	copy(dealt, (*d)[startingIndex:numCardsInDeck])
	*d = (*d)[:startingIndex]
	return dealt
}

// Clone returns a copy that shares no memory with d
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	out := make(Deck, len(d))
	copy(out, d)
	return out
}

// Sorted returns the cards in ascending rank order without touching the input
func Sorted(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
