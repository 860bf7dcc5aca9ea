package bots

import "github.com/minaorangina/removeone/deck"

// Distribution is a probability mass over ranks, indexed by rank. Index 0 is unused.
type Distribution []float64

// NewDistribution spreads the mass over cards in proportion to how often each rank occurs
func NewDistribution(cards []deck.Card, maxRank int) Distribution {
	d := make(Distribution, maxRank+1)
	for _, c := range cards {
		if c > deck.NoCard && int(c) <= maxRank {
			d[c]++
		}
	}
	return Normalize(d)
}

func (d Distribution) Prob(card deck.Card) float64 {
	if card <= deck.NoCard || int(card) >= len(d) {
		return 0
	}
	return d[card]
}

func (d Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d {
		total += p
	}
	return total
}

// Above is the mass on ranks strictly higher than card
func (d Distribution) Above(card deck.Card) float64 {
	total := 0.0
	for r := int(card) + 1; r < len(d); r++ {
		total += d[r]
	}
	return total
}

// Below is the mass on ranks strictly lower than card
func (d Distribution) Below(card deck.Card) float64 {
	total := 0.0
	for r := 1; r < int(card) && r < len(d); r++ {
		total += d[r]
	}
	return total
}

// Normalize scales d to sum to one. A distribution with no mass stays empty.
func Normalize(d Distribution) Distribution {
	out := make(Distribution, len(d))
	total := d.Sum()
	if total <= 0 {
		return out
	}
	for r, p := range d {
		out[r] = p / total
	}
	return out
}

// Exclude removes all mass from card's rank
func Exclude(d Distribution, card deck.Card) Distribution {
	out := append(Distribution{}, d...)
	if card > deck.NoCard && int(card) < len(out) {
		out[card] = 0
	}
	return Normalize(out)
}

// Rescale multiplies each rank by its factor, typically remaining/previous copies of that rank
func Rescale(d Distribution, factors []float64) Distribution {
	out := append(Distribution{}, d...)
	for r := range out {
		if r < len(factors) {
			out[r] *= factors[r]
		}
	}
	return Normalize(out)
}

// Mix blends a fraction w of prior into d
func Mix(d, prior Distribution, w float64) Distribution {
	if w <= 0 {
		return Normalize(d)
	}
	if w > 1 {
		w = 1
	}
	out := make(Distribution, len(d))
	for r := range out {
		p := 0.0
		if r < len(prior) {
			p = prior[r]
		}
		out[r] = (1-w)*d[r] + w*p
	}
	return Normalize(out)
}

// Belief is what a bot thinks one opponent is holding.
// Known cards are certain; Dist covers the rest of the hand.
type Belief struct {
	Dist  Distribution `json:"dist"`
	Known []deck.Card  `json:"known"`
}

// Play is the chance that a card picked from a hand of handSize cards has each rank
func (b Belief) Play(handSize int, fallback Distribution) Distribution {
	dist := b.Dist
	if dist.Sum() == 0 {
		dist = fallback
	}
	out := make(Distribution, len(dist))
	if handSize <= 0 {
		return out
	}

	known := len(b.Known)
	if known > handSize {
		known = handSize
	}
	for r, p := range dist {
		out[r] = float64(handSize-known) * p
	}
	for _, c := range b.Known[:known] {
		if int(c) < len(out) {
			out[c]++
		}
	}
	return Normalize(out)
}

func (b Belief) forget(card deck.Card) (Belief, bool) {
	for i, c := range b.Known {
		if c == card {
			known := append([]deck.Card{}, b.Known[:i]...)
			return Belief{Dist: b.Dist, Known: append(known, b.Known[i+1:]...)}, true
		}
	}
	return b, false
}
