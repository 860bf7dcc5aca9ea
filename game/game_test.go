package game

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePlayerState(t *testing.T) *State {
	opts := RemoveOneOpts{
		Players:     3,
		Composition: []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6},
		HandSize:    2,
		Tokens:      1,
	}
	return stateWithHands(t, opts,
		[][]deck.Card{{1, 4}, {2, 5}, {3, 6}},
		[]deck.Card{1, 2, 3, 4, 5, 6},
	)
}

func TestNewRemoveOne(t *testing.T) {
	t.Run("deals full hands and full tokens", func(t *testing.T) {
		opts := DefaultOpts()
		s, err := NewRemoveOne(opts, 7)
		require.NoError(t, err)

		assert.Equal(t, 1, s.Round)
		assert.Equal(t, protocol.Select, s.Phase)
		assert.False(t, s.Terminal)
		assert.Len(t, s.Deck, len(opts.Composition)-opts.Players*opts.HandSize)

		for _, p := range s.Players {
			assert.Len(t, p.Hand, opts.HandSize)
			assert.Equal(t, opts.Tokens, p.Tokens)
			assert.True(t, p.Active())
			assert.True(t, deckIsSorted(p.Hand))
		}
		assert.Equal(t, len(opts.Composition), s.CardsInPlay())
	})

	t.Run("the same seed deals the same game", func(t *testing.T) {
		a, err := NewRemoveOne(DefaultOpts(), 99)
		require.NoError(t, err)
		b, err := NewRemoveOne(DefaultOpts(), 99)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("rejects malformed options", func(t *testing.T) {
		cases := []struct {
			name   string
			modify func(*RemoveOneOpts)
		}{
			{"too few players", func(o *RemoveOneOpts) { o.Players = 1 }},
			{"too many players", func(o *RemoveOneOpts) { o.Players = 9 }},
			{"non-positive hand size", func(o *RemoveOneOpts) { o.HandSize = 0 }},
			{"non-positive tokens", func(o *RemoveOneOpts) { o.Tokens = 0 }},
			{"negative round cap", func(o *RemoveOneOpts) { o.MaxRounds = -1 }},
			{"empty deck", func(o *RemoveOneOpts) { o.Composition = nil }},
			{"zero rank", func(o *RemoveOneOpts) { o.Composition = append(o.Composition, 0) }},
			{"too few cards", func(o *RemoveOneOpts) { o.HandSize = 20 }},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				opts := DefaultOpts()
				c.modify(&opts)

				s, err := NewRemoveOne(opts, 1)
				assert.Nil(t, s)
				assert.True(t, errors.Is(err, ErrConfiguration))

				var cfgErr *ConfigurationError
				assert.True(t, errors.As(err, &cfgErr))
			})
		}
	})
}

func TestAdvanceScenario(t *testing.T) {
	t.Run("an elimination removes exactly one card and one token", func(t *testing.T) {
		t.Log("Given two players holding 1 and 2 each, one token each")
		s := stateWithHands(t, twoPlayerOpts(), [][]deck.Card{{1, 2}, {1, 2}}, nil)
		before := s.CardsInPlay()

		t.Log("When seat 0 plays the 1 and seat 1 plays the 2")
		s = mustAdvance(t, s, selectCards(t, s, 1, 2)...)
		assert.Equal(t, protocol.Reveal, s.Phase)
		s = mustAdvance(t, s)
		assert.Equal(t, protocol.Choose, s.Phase)
		assert.Empty(t, s.Qualifying())
		s = mustAdvance(t, s)
		assert.Equal(t, protocol.Resolve, s.Phase)
		s = mustAdvance(t, s)

		t.Log("Then the 2 is gone from the game and seat 1 is out")
		assert.Equal(t, before-1, s.CardsInPlay())
		assert.Equal(t, []deck.Card{2}, s.Removed)
		assert.Equal(t, 1, s.Players[0].Tokens)
		assert.Equal(t, 0, s.Players[1].Tokens)
		assert.True(t, s.Players[1].Eliminated)
		assert.Equal(t, []int{1}, s.EliminationOrder)
		assert.Equal(t, 1, s.Players[0].Score)
		assert.Equal(t, 1, s.Players[0].LastWinRound)

		t.Log("And the game is over")
		assert.True(t, s.Terminal)
		assert.Equal(t, protocol.Terminal, s.Phase)
	})

	t.Run("a full collision changes nothing", func(t *testing.T) {
		s := stateWithHands(t, twoPlayerOpts(), [][]deck.Card{{1, 2}, {1, 2}}, nil)
		before := s.CardsInPlay()

		s = mustAdvance(t, s, selectCards(t, s, 1, 1)...)
		s = mustAdvance(t, s)
		assert.Equal(t, []int{0, 1}, s.Qualifying())

		s = mustAdvance(t, s, protocol.ChooseAction(0, 0), protocol.ChooseAction(1, 0))
		s = mustAdvance(t, s)

		assert.Equal(t, before, s.CardsInPlay())
		assert.Empty(t, s.Removed)
		assert.Equal(t, 1, s.Players[0].Tokens)
		assert.Equal(t, 1, s.Players[1].Tokens)
		assert.Equal(t, NoSeat, s.LastOutcome.Winner)
	})

	t.Run("withdrawing hands the round to the other seat and returns the card", func(t *testing.T) {
		s := stateWithHands(t, twoPlayerOpts(), [][]deck.Card{{1, 2}, {1, 2}}, nil)

		s = mustAdvance(t, s, selectCards(t, s, 1, 1)...)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s, protocol.ChooseAction(0, 1), protocol.ChooseAction(1, 0))
		s = mustAdvance(t, s)

		assert.Equal(t, []deck.Card{1, 2}, s.Players[0].Hand)
		assert.Equal(t, 0, s.Players[0].Score)
		assert.Equal(t, 1, s.Players[1].Score)
		assert.Equal(t, NoSeat, s.LastOutcome.Loser)
		assert.Empty(t, s.Removed)
	})

	t.Run("hands are refilled from the deck and the next round begins", func(t *testing.T) {
		s := threePlayerState(t)

		s = mustAdvance(t, s, selectCards(t, s, 1, 2, 3)...)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s)

		assert.False(t, s.Terminal)
		assert.Equal(t, 2, s.Round)
		assert.Equal(t, protocol.Select, s.Phase)
		assert.True(t, s.Players[2].Eliminated)
		assert.Equal(t, []deck.Card{4, 6}, s.Players[0].Hand)
		assert.Equal(t, []deck.Card{5, 5}, s.Players[1].Hand)
		assert.Len(t, s.Deck, 4)
		assert.Equal(t, []deck.Card{1, 2, 6}, deck.Sorted(s.Discard))
	})
}

func TestAdvanceRejectsBadActions(t *testing.T) {
	t.Run("out of range card index", func(t *testing.T) {
		s := threePlayerState(t)
		_, err := Advance(s, []protocol.Action{
			protocol.SelectAction(0, 0), protocol.SelectAction(1, 5), protocol.SelectAction(2, 0),
		})
		assert.True(t, errors.Is(err, ErrInvalidAction))
	})

	t.Run("action from an unknown seat", func(t *testing.T) {
		s := threePlayerState(t)
		_, err := Advance(s, []protocol.Action{protocol.SelectAction(3, 0)})
		assert.True(t, errors.Is(err, ErrInvalidAction))
	})

	t.Run("choosing during SELECT", func(t *testing.T) {
		s := threePlayerState(t)
		_, err := Advance(s, []protocol.Action{
			protocol.SelectAction(0, 0), protocol.ChooseAction(1, 0), protocol.SelectAction(2, 0),
		})

		var actionErr *InvalidActionError
		require.True(t, errors.As(err, &actionErr))
		assert.Equal(t, protocol.Select, actionErr.Phase)
		assert.Equal(t, 1, actionErr.Action.Seat)
	})

	t.Run("action from an eliminated seat", func(t *testing.T) {
		s := threePlayerState(t)
		s = mustAdvance(t, s, selectCards(t, s, 1, 2, 3)...)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s)
		require.True(t, s.Players[2].Eliminated)

		_, err := Advance(s, []protocol.Action{
			protocol.SelectAction(0, 0), protocol.SelectAction(1, 0), protocol.SelectAction(2, 0),
		})
		assert.True(t, errors.Is(err, ErrInvalidAction))
		assert.Nil(t, s.LegalActions(2))
	})

	t.Run("decisions during REVEAL", func(t *testing.T) {
		s := threePlayerState(t)
		s = mustAdvance(t, s, selectCards(t, s, 1, 2, 3)...)
		_, err := Advance(s, []protocol.Action{protocol.SelectAction(0, 0)})
		assert.True(t, errors.Is(err, ErrInvalidAction))
	})

	t.Run("a choice from a seat that does not qualify", func(t *testing.T) {
		s := threePlayerState(t)
		s = mustAdvance(t, s, selectCards(t, s, 1, 2, 3)...)
		s = mustAdvance(t, s)
		_, err := Advance(s, []protocol.Action{protocol.ChooseAction(0, 0)})
		assert.True(t, errors.Is(err, ErrInvalidAction))
	})

	t.Run("out of range option", func(t *testing.T) {
		s := stateWithHands(t, twoPlayerOpts(), [][]deck.Card{{1, 2}, {1, 2}}, nil)
		s = mustAdvance(t, s, selectCards(t, s, 1, 1)...)
		s = mustAdvance(t, s)
		_, err := Advance(s, []protocol.Action{protocol.ChooseAction(0, 2), protocol.ChooseAction(1, 0)})
		assert.True(t, errors.Is(err, ErrInvalidAction))
	})

	t.Run("advancing a finished game", func(t *testing.T) {
		s := stateWithHands(t, twoPlayerOpts(), [][]deck.Card{{1, 2}, {1, 2}}, nil)
		s = mustAdvance(t, s, selectCards(t, s, 1, 2)...)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s)
		s = mustAdvance(t, s)
		require.True(t, s.Terminal)

		_, err := Advance(s, []protocol.Action{protocol.SelectAction(0, 0)})
		assert.True(t, errors.Is(err, ErrInvalidAction))
		_, err = Advance(s, nil)
		assert.True(t, errors.Is(err, ErrInvariantViolation))
	})

	t.Run("nil state", func(t *testing.T) {
		_, err := Advance(nil, nil)
		assert.Equal(t, ErrNilState, err)
	})
}

func TestAdvanceInvariants(t *testing.T) {
	t.Run("duplicate actions from one seat are a contract violation", func(t *testing.T) {
		s := threePlayerState(t)
		_, err := Advance(s, []protocol.Action{
			protocol.SelectAction(0, 0), protocol.SelectAction(0, 1),
			protocol.SelectAction(1, 0), protocol.SelectAction(2, 0),
		})
		assert.True(t, errors.Is(err, ErrInvariantViolation))
	})

	t.Run("a missing selection is a contract violation", func(t *testing.T) {
		s := threePlayerState(t)
		_, err := Advance(s, []protocol.Action{protocol.SelectAction(0, 0), protocol.SelectAction(1, 0)})
		assert.True(t, errors.Is(err, ErrInvariantViolation))
	})

	t.Run("a missing choice from a qualifying seat is a contract violation", func(t *testing.T) {
		s := stateWithHands(t, twoPlayerOpts(), [][]deck.Card{{1, 2}, {1, 2}}, nil)
		s = mustAdvance(t, s, selectCards(t, s, 1, 1)...)
		s = mustAdvance(t, s)
		_, err := Advance(s, []protocol.Action{protocol.ChooseAction(0, 0)})
		assert.True(t, errors.Is(err, ErrInvariantViolation))
	})

	t.Run("a lost card is detected", func(t *testing.T) {
		s := threePlayerState(t)
		broken := s.clone()
		broken.Deck = broken.Deck[1:]

		err := broken.checkConsistency()
		var violationErr *InvariantViolation
		assert.True(t, errors.As(err, &violationErr))
	})

	t.Run("advance leaves its input untouched", func(t *testing.T) {
		s := threePlayerState(t)
		before, err := json.Marshal(s)
		require.NoError(t, err)

		next := mustAdvance(t, s, selectCards(t, s, 1, 2, 3)...)
		next = mustAdvance(t, next)
		next = mustAdvance(t, next)
		mustAdvance(t, next)

		after, err := json.Marshal(s)
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after))
	})
}

func TestRandomPlayProperties(t *testing.T) {
	for seed := int64(0); seed < 40; seed++ {
		opts := DefaultOpts()
		opts.Players = 2 + int(seed%4)
		s, err := NewRemoveOne(opts, seed)
		require.NoError(t, err)
		rng := rand.New(rand.NewSource(seed))

		phases := []protocol.Phase{}
		for steps := 0; !s.Terminal; steps++ {
			require.Less(t, steps, 4*opts.MaxRounds, "game did not terminate")

			prev := s
			phases = append(phases, s.Phase)
			s, err = Advance(s, randomActions(s, rng))
			require.NoError(t, err, "seed %d", seed)

			assert.Equal(t, s.TotalCards, s.CardsInPlay()+len(s.Removed))
			if prev.Phase != protocol.Resolve {
				assert.Equal(t, prev.CardsInPlay(), s.CardsInPlay())
			} else {
				assert.Contains(t, []int{0, 1}, prev.CardsInPlay()-s.CardsInPlay())
			}
		}

		for i, phase := range phases {
			assert.Equal(t, protocol.Phase(i%4), phase, "seed %d step %d", seed, i)
		}
		assert.Equal(t, protocol.Resolve, phases[len(phases)-1])
		assert.Equal(t, protocol.Terminal, s.Phase)
	}
}

func TestStandings(t *testing.T) {
	t.Run("survivors first, then score, then tokens, then elimination order", func(t *testing.T) {
		s := &State{
			Players: []Player{
				{Seat: 0, Score: 5, Tokens: 1},
				{Seat: 1, Score: 9, Tokens: 0, Eliminated: true},
				{Seat: 2, Score: 5, Tokens: 2},
				{Seat: 3, Score: 1, Tokens: 0, Eliminated: true},
				{Seat: 4, Score: 5, Tokens: 1},
			},
			EliminationOrder: []int{1, 3},
		}

		standings := s.Standings()
		seats := []int{}
		for _, st := range standings {
			seats = append(seats, st.Seat)
		}
		assert.Equal(t, []int{2, 0, 4, 3, 1}, seats)
		assert.Equal(t, []int{2, 5, 1, 4, 2}, s.Ranks())
	})

	t.Run("a more recent win breaks a tie on score and tokens", func(t *testing.T) {
		s := &State{
			Players: []Player{
				{Seat: 0, Score: 4, Tokens: 1, LastWinRound: 2},
				{Seat: 1, Score: 4, Tokens: 1, LastWinRound: 5},
				{Seat: 2, Score: 4, Tokens: 1, LastWinRound: 2},
			},
		}

		assert.Equal(t, []int{2, 1, 2}, s.Ranks())
		assert.Equal(t, 1, s.Standings()[0].Seat)
	})
}

func deckIsSorted(cards []deck.Card) bool {
	for i := 1; i < len(cards); i++ {
		if cards[i-1] > cards[i] {
			return false
		}
	}
	return true
}
