package bots

import (
	"testing"

	"github.com/minaorangina/removeone/game"
	"github.com/stretchr/testify/assert"
)

func TestRandomBot(t *testing.T) {
	t.Run("only ever plays legal actions", func(t *testing.T) {
		for seed := int64(0); seed < 25; seed++ {
			opts := game.DefaultOpts()
			players := make([]Bot, opts.Players)
			for seat := range players {
				players[seat] = NewRandomBot(seed*10 + int64(seat))
			}
			s := playGame(t, opts, seed, players)
			assert.True(t, s.Terminal)
		}
	})

	t.Run("is reproducible from its seed", func(t *testing.T) {
		s, err := game.NewRemoveOne(game.DefaultOpts(), 3)
		assert.NoError(t, err)
		obs := s.Observe(0)

		a, b := NewRandomBot(42), NewRandomBot(42)
		for i := 0; i < 10; i++ {
			assert.Equal(t, a.Decide(obs), b.Decide(obs))
		}
	})
}
