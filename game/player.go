package game

import "github.com/minaorangina/removeone/deck"

// Player is a seat at the table. Transitions produce new Player values.
type Player struct {
	Seat         int         `json:"seat"`
	Hand         []deck.Card `json:"hand"`
	Score        int         `json:"score"`
	Tokens       int         `json:"tokens"`
	Eliminated   bool        `json:"eliminated"`
	LastWinRound int         `json:"lastWinRound"`
}

func (p Player) Active() bool {
	return !p.Eliminated
}

func (p Player) clone() Player {
	out := p
	out.Hand = append([]deck.Card{}, p.Hand...)
	return out
}

// take removes the card at idx from the hand, keeping the order of the rest
func (p *Player) take(idx int) deck.Card {
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx:idx], p.Hand[idx+1:]...)
	return card
}

func (p *Player) give(cards ...deck.Card) {
	p.Hand = deck.Sorted(append(p.Hand, cards...))
}
