package deck

import "strconv"

// Card represents a playing card. Only the rank matters to the rules.
type Card int

// NoCard marks an empty slot, e.g. a seat that has not committed a card.
const NoCard Card = 0

// Rank returns a card's rank
func (c Card) Rank() int {
	return int(c)
}

func (c Card) String() string {
	if c == NoCard {
		return "-"
	}
	return strconv.Itoa(int(c))
}

// Counts returns the multiset of ranks in cards
func Counts(cards []Card) map[Card]int {
	counts := map[Card]int{}
	for _, c := range cards {
		if c == NoCard {
			continue
		}
		counts[c]++
	}
	return counts
}

// MaxRank returns the highest rank in cards, or NoCard for an empty slice
func MaxRank(cards []Card) Card {
	max := NoCard
	for _, c := range cards {
		if c > max {
			max = c
		}
	}
	return max
}
