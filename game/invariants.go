package game

import (
	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/protocol"
)

// checkConsistency verifies a single snapshot
func (s *State) checkConsistency() error {
	if len(s.Players) != s.Opts.Players || len(s.Committed) != len(s.Players) || len(s.Choices) != len(s.Players) {
		return violation(s, "seat count does not match the table")
	}

	if total := s.CardsInPlay() + len(s.Removed); total != s.TotalCards {
		return violation(s, "card conservation broken: counted %d cards, want %d", total, s.TotalCards)
	}

	got := deck.Counts(s.allCards())
	want := deck.Counts(deck.New(s.Opts.Composition))
	for rank, n := range want {
		if got[rank] != n {
			return violation(s, "rank %s appears %d times, want %d", rank, got[rank], n)
		}
	}
	if len(got) != len(want) {
		return violation(s, "cards outside the deck composition are in play")
	}

	tokensLost := 0
	for _, p := range s.Players {
		if p.Tokens < 0 {
			return violation(s, "seat %d has negative tokens", p.Seat)
		}
		if p.Eliminated != (p.Tokens == 0) {
			return violation(s, "seat %d elimination flag disagrees with its tokens", p.Seat)
		}
		if p.Eliminated && (len(p.Hand) > 0 || s.Committed[p.Seat] != deck.NoCard) {
			return violation(s, "eliminated seat %d still holds cards", p.Seat)
		}
		tokensLost += s.Opts.Tokens - p.Tokens
	}
	if tokensLost != len(s.Removed) {
		return violation(s, "%d tokens lost but %d cards removed", tokensLost, len(s.Removed))
	}

	return nil
}

// checkTransition verifies a step from prev to next
func checkTransition(prev, next *State) error {
	if err := next.checkConsistency(); err != nil {
		return err
	}

	wantPhase := prev.Phase.Next()
	if next.Phase != wantPhase && !(prev.Phase == protocol.Resolve && next.Phase == protocol.Terminal) {
		return violation(next, "phase moved from %s to %s", prev.Phase, next.Phase)
	}
	if next.Terminal != (next.Phase == protocol.Terminal) {
		return violation(next, "terminal flag disagrees with the phase")
	}

	if removed := len(next.Removed) - len(prev.Removed); removed < 0 || removed > 1 {
		return violation(next, "%d cards removed in one transition", removed)
	}
	if eliminated := len(next.EliminationOrder) - len(prev.EliminationOrder); eliminated < 0 || eliminated > 1 {
		return violation(next, "%d players eliminated in one transition", eliminated)
	}

	return nil
}

func (s *State) allCards() []deck.Card {
	cards := []deck.Card{}
	for _, p := range s.Players {
		cards = append(cards, p.Hand...)
	}
	cards = append(cards, s.Committed...)
	cards = append(cards, s.Deck...)
	cards = append(cards, s.Discard...)
	cards = append(cards, s.Removed...)
	return cards
}
