package game

import (
	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/protocol"
)

// NoSeat marks the absence of a winner or loser
const NoSeat = -1

// Contest is the public table during CHOOSE and RESOLVE: what every seat committed,
// what they chose, and where the scores and tokens stand in which round.
type Contest struct {
	Round     int               `json:"round"`
	Committed []deck.Card       `json:"committed"`
	Choices   []protocol.Option `json:"choices"`
	Scores    []int             `json:"scores"`
	Tokens    []int             `json:"tokens"`
	Active    []bool            `json:"active"`
}

// Contestants returns the seats whose committed card is still in play
func (c Contest) Contestants() []int {
	seats := []int{}
	for seat, card := range c.Committed {
		if card == deck.NoCard || !c.Active[seat] || c.Choices[seat] == protocol.Withdraw {
			continue
		}
		seats = append(seats, seat)
	}
	return seats
}

// WithChoice returns a copy of the contest where seat made the given choice
func (c Contest) WithChoice(seat int, choice protocol.Option) Contest {
	out := c
	out.Choices = append([]protocol.Option{}, c.Choices...)
	out.Choices[seat] = choice
	return out
}

// Outcome is the result of resolving one round
type Outcome struct {
	Winner      int       `json:"winner"`
	WinningCard deck.Card `json:"winningCard"`
	Loser       int       `json:"loser"`
	RemovedCard deck.Card `json:"removedCard"`
	ScoreDeltas []int     `json:"scoreDeltas"`
}

// Rules are the pluggable parts of the game: who gets a secondary choice,
// what they may choose, and how a round is scored.
// Rules only ever see public information.
type Rules interface {
	Qualifies(c Contest, seat int) bool
	Options(c Contest, seat int) []protocol.Option
	Resolve(c Contest) Outcome
}

// LowestUnique awards the round to the lowest rank nobody else played.
// Colliding seats may withdraw; the highest card above the winner is removed from the game.
type LowestUnique struct{}

func (LowestUnique) Qualifies(c Contest, seat int) bool {
	if seat < 0 || seat >= len(c.Committed) || !c.Active[seat] {
		return false
	}
	card := c.Committed[seat]
	if card == deck.NoCard {
		return false
	}
	for other, otherCard := range c.Committed {
		if other != seat && c.Active[other] && otherCard == card {
			return true
		}
	}
	return false
}

func (r LowestUnique) Options(c Contest, seat int) []protocol.Option {
	if !r.Qualifies(c, seat) {
		return nil
	}
	return []protocol.Option{protocol.Stand, protocol.Withdraw}
}

func (LowestUnique) Resolve(c Contest) Outcome {
	outcome := Outcome{
		Winner:      NoSeat,
		Loser:       NoSeat,
		ScoreDeltas: make([]int, len(c.Committed)),
	}

	contestants := c.Contestants()
	counts := map[deck.Card]int{}
	for _, seat := range contestants {
		counts[c.Committed[seat]]++
	}

	for _, seat := range contestants {
		card := c.Committed[seat]
		if counts[card] != 1 {
			continue
		}
		if outcome.Winner == NoSeat || card < outcome.WinningCard {
			outcome.Winner = seat
			outcome.WinningCard = card
		}
	}
	if outcome.Winner == NoSeat {
		return outcome
	}
	outcome.ScoreDeltas[outcome.Winner] = outcome.WinningCard.Rank()

	for _, seat := range contestants {
		card := c.Committed[seat]
		if card <= outcome.WinningCard {
			continue
		}
		if outcome.Loser == NoSeat || card > outcome.RemovedCard ||
			(card == outcome.RemovedCard && c.Scores[seat] > c.Scores[outcome.Loser]) {
			outcome.Loser = seat
			outcome.RemovedCard = card
		}
	}

	return outcome
}
