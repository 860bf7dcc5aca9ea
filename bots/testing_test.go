package bots

import (
	"testing"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
	"github.com/stretchr/testify/require"
)

// playGame runs a game to the end, checking every decision against the legal actions
func playGame(t *testing.T, opts game.RemoveOneOpts, seed int64, players []Bot) *game.State {
	t.Helper()

	s, err := game.NewRemoveOne(opts, seed)
	require.NoError(t, err)
	notify(s, players)

	for !s.Terminal {
		actions := []protocol.Action{}
		for seat, p := range players {
			if !decides(s, seat) {
				continue
			}
			obs := s.Observe(seat)
			a := p.Decide(obs)
			require.Contains(t, obs.Legal, a, "%s played an illegal action", p.Name())
			actions = append(actions, a)
		}

		s, err = game.Advance(s, actions)
		require.NoError(t, err)
		notify(s, players)
	}
	return s
}

func notify(s *game.State, players []Bot) {
	for seat, p := range players {
		if o, ok := p.(Observer); ok {
			o.Observe(s.Observe(seat))
		}
	}
}

func smallOpts() game.RemoveOneOpts {
	return game.RemoveOneOpts{
		Players:     3,
		Composition: []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6},
		HandSize:    2,
		Tokens:      2,
		MaxRounds:   16,
	}
}

// table builds a round 1 SELECT state with the given hands and deck
func table(t *testing.T, opts game.RemoveOneOpts, hands [][]deck.Card, rest deck.Deck) *game.State {
	t.Helper()

	fresh, err := game.NewRemoveOne(opts, 1)
	require.NoError(t, err)
	obs := fresh.Observe(0)
	obs.Hand = hands[0]

	s, err := game.Determinize(obs, hands, rest)
	require.NoError(t, err)
	return s
}

// selectByRank commits the card of the given rank for each seat in order
func selectByRank(t *testing.T, s *game.State, ranks ...deck.Card) *game.State {
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
		require.NotEqual(t, -1, idx)
		actions = append(actions, protocol.SelectAction(seat, idx))
	}

	next, err := game.Advance(s, actions)
	require.NoError(t, err)
	return next
}

// collision leaves seats 0 and 1 tied on 3s in CHOOSE, with seat 2 holding the winning 1
func collision(t *testing.T) *game.State {
	t.Helper()

	s := table(t, smallOpts(),
		[][]deck.Card{{3, 4}, {3, 5}, {1, 6}},
		deck.Deck{1, 2, 2, 4, 5, 6},
	)
	s = selectByRank(t, s, 3, 3, 1)
	s, err := game.Advance(s, nil)
	require.NoError(t, err)
	require.Equal(t, protocol.Choose, s.Phase)
	return s
}
