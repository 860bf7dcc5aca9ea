package game

import (
	"math/rand"
	"testing"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/protocol"
	"github.com/stretchr/testify/require"
)

// stateWithHands builds a SELECT state in round 1 with the given hands and deck
func stateWithHands(t *testing.T, opts RemoveOneOpts, hands [][]deck.Card, rest []deck.Card) *State {
	t.Helper()

	s := &State{
		Round:            1,
		Phase:            protocol.Select,
		Players:          make([]Player, len(hands)),
		Deck:             deck.Deck(append([]deck.Card{}, rest...)),
		Discard:          []deck.Card{},
		Removed:          []deck.Card{},
		Committed:        make([]deck.Card, len(hands)),
		Choices:          make([]protocol.Option, len(hands)),
		EliminationOrder: []int{},
		TotalCards:       len(opts.Composition),
		Opts:             opts,
	}
	for seat, hand := range hands {
		s.Players[seat] = Player{Seat: seat, Hand: deck.Sorted(hand), Tokens: opts.Tokens}
	}
	require.NoError(t, s.checkConsistency())
	return s
}

func twoPlayerOpts() RemoveOneOpts {
	return RemoveOneOpts{
		Players:     2,
		Composition: []int{1, 1, 2, 2},
		HandSize:    2,
		Tokens:      1,
	}
}

// randomActions picks a legal action for every seat that has to act
func randomActions(s *State, rng *rand.Rand) []protocol.Action {
	actions := []protocol.Action{}
	switch s.Phase {
	case protocol.Select:
		for _, seat := range s.ActiveSeats() {
			legal := s.LegalActions(seat)
			actions = append(actions, legal[rng.Intn(len(legal))])
		}
	case protocol.Choose:
		for _, seat := range s.Qualifying() {
			legal := s.LegalActions(seat)
			actions = append(actions, legal[rng.Intn(len(legal))])
		}
	}
	return actions
}

// selectCards commits the card of the given rank for every seat
func selectCards(t *testing.T, s *State, ranks ...deck.Card) []protocol.Action {
	t.Helper()

	actions := []protocol.Action{}
	for seat, rank := range ranks {
		idx := -1
		for i, c := range s.Players[seat].Hand {
			if c == rank {
				idx = i
				break
			}
		}
		require.NotEqual(t, -1, idx, "seat %d does not hold %s", seat, rank)
		actions = append(actions, protocol.SelectAction(seat, idx))
	}
	return actions
}

func mustAdvance(t *testing.T, s *State, actions ...protocol.Action) *State {
	t.Helper()

	next, err := Advance(s, actions)
	require.NoError(t, err)
	return next
}
