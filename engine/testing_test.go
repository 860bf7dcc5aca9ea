package engine

import (
	"sync"
	"testing"

	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func exactOpts() game.RemoveOneOpts {
	return game.RemoveOneOpts{
		Players:     2,
		Composition: []int{1, 1, 2, 2},
		HandSize:    2,
		Tokens:      1,
		MaxRounds:   3,
	}
}

func newEngine(t *testing.T, opts game.RemoveOneOpts, seed int64, players []bots.Bot) *GameEngine {
	t.Helper()

	logger, _ := test.NewNullLogger()
	e, err := NewGameEngine(GameEngineOpts{GameOpts: opts, Bots: players, Seed: seed, Logger: logger})
	require.NoError(t, err)
	return e
}

// roster seats a fresh mix of every bot for seed
func roster(seed int64, n int) []bots.Bot {
	minimax := bots.DefaultMinimaxOpts()
	minimax.Depth = 1
	minimax.Samples = 2
	minimax.NodeBudget = 2000

	factories := []bots.Factory{
		bots.RandomFactory(),
		bots.GreedyFactory(bots.DefaultGreedyOpts()),
		bots.CardCountingFactory(bots.DefaultCardCountingOpts()),
		bots.MinimaxFactory(minimax),
	}
	out := make([]bots.Bot, n)
	for seat := range out {
		out[seat] = factories[seat%len(factories)](seed + int64(seat))
	}
	return out
}

// firstCardBot always plays its first legal action
type firstCardBot struct{}

func (firstCardBot) Name() string { return "first" }

func (firstCardBot) Decide(obs game.Observation) protocol.Action {
	return obs.Legal[0]
}

func firstCardBots(n int) []bots.Bot {
	out := make([]bots.Bot, n)
	for i := range out {
		out[i] = firstCardBot{}
	}
	return out
}

// lastCardBot always plays its last legal action
type lastCardBot struct{}

func (lastCardBot) Name() string { return "last" }

func (lastCardBot) Decide(obs game.Observation) protocol.Action {
	return obs.Legal[len(obs.Legal)-1]
}

func lastCardBots(n int) []bots.Bot {
	out := make([]bots.Bot, n)
	for i := range out {
		out[i] = lastCardBot{}
	}
	return out
}

// cheatingBot plays a card it does not have from round `from` onwards
type cheatingBot struct {
	from int
}

func (cheatingBot) Name() string { return "cheat" }

func (b cheatingBot) Decide(obs game.Observation) protocol.Action {
	if obs.Phase == protocol.Select && obs.Round >= b.from {
		return protocol.SelectAction(obs.Seat, len(obs.Hand)+3)
	}
	return obs.Legal[0]
}

// spyBot counts what it is shown
type spyBot struct {
	firstCardBot
	mu       sync.Mutex
	observed []protocol.Phase
	decided  int
}

func (b *spyBot) Decide(obs game.Observation) protocol.Action {
	b.mu.Lock()
	b.decided++
	b.mu.Unlock()
	return obs.Legal[0]
}

func (b *spyBot) Observe(obs game.Observation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observed = append(b.observed, obs.Phase)
}

func hookLevels(hook *test.Hook) []logrus.Level {
	levels := []logrus.Level{}
	for _, entry := range hook.AllEntries() {
		levels = append(levels, entry.Level)
	}
	return levels
}

// impostorBot answers for the seat before its own
type impostorBot struct{}

func (impostorBot) Name() string { return "impostor" }

func (impostorBot) Decide(obs game.Observation) protocol.Action {
	victim := (obs.Seat + len(obs.Players) - 1) % len(obs.Players)
	if obs.Phase == protocol.Select {
		return protocol.SelectAction(victim, 0)
	}
	return protocol.PassAction(victim)
}
