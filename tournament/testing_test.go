package tournament

import (
	"sync"

	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/engine"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
	"github.com/sirupsen/logrus/hooks/test"
)

func smallGame() game.RemoveOneOpts {
	return game.RemoveOneOpts{
		Players:     3,
		Composition: []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4, 5, 5, 5, 6, 6, 6},
		HandSize:    3,
		Tokens:      2,
		MaxRounds:   20,
	}
}

func field() []Entrant {
	minimax := bots.DefaultMinimaxOpts()
	minimax.Depth = 1
	minimax.Samples = 2
	minimax.NodeBudget = 2000

	return []Entrant{
		{Name: "random", New: bots.RandomFactory()},
		{Name: "greedy", New: bots.GreedyFactory(bots.DefaultGreedyOpts())},
		{Name: "cardcounting", New: bots.CardCountingFactory(bots.DefaultCardCountingOpts())},
		{Name: "minimax", New: bots.MinimaxFactory(minimax)},
	}
}

func opts(format Format, workers int) Opts {
	logger, _ := test.NewNullLogger()
	return Opts{
		GameOpts:        smallGame(),
		Entrants:        field(),
		Format:          format,
		GamesPerMatchup: 2,
		Workers:         workers,
		Seed:            77,
		Logger:          logger,
	}
}

// cheat always plays a card that does not exist
type cheat struct{}

func (cheat) Name() string { return "cheat" }

func (cheat) Decide(obs game.Observation) protocol.Action {
	if obs.Phase == protocol.Select {
		return protocol.SelectAction(obs.Seat, -1)
	}
	return obs.Legal[0]
}

func cheatFactory() bots.Factory {
	return func(int64) bots.Bot { return cheat{} }
}

type spyArchive struct {
	mu        sync.Mutex
	records   []*engine.Record
	summaries []*Summary
}

func (a *spyArchive) AddRecord(r *engine.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
	return nil
}

func (a *spyArchive) AddSummary(s *Summary) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summaries = append(a.summaries, s)
	return nil
}

type spyPublisher struct {
	mu        sync.Mutex
	published []GameResult
}

func (p *spyPublisher) Publish(r GameResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, r)
}

// impostor plays its moves in its opponent's name
type impostor struct{}

func (impostor) Name() string { return "impostor" }

func (impostor) Decide(obs game.Observation) protocol.Action {
	victim := (obs.Seat + 1) % len(obs.Players)
	if obs.Phase == protocol.Select {
		return protocol.SelectAction(victim, 0)
	}
	return protocol.PassAction(victim)
}

func impostorFactory() bots.Factory {
	return func(int64) bots.Bot { return impostor{} }
}
