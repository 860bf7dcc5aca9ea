package bots

import (
	"math"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

type GreedyOpts struct {
	// TokenWeight is the score a token is worth when deciding whether to stand
	TokenWeight float64
}

func DefaultGreedyOpts() GreedyOpts {
	return GreedyOpts{TokenWeight: 3}
}

// GreedyBot maximises the score it expects to collect this round, and nothing else
type GreedyBot struct {
	opts GreedyOpts
}

func NewGreedyBot(opts GreedyOpts) *GreedyBot {
	return &GreedyBot{opts: opts}
}

func (b *GreedyBot) Name() string {
	return "greedy"
}

func (b *GreedyBot) Decide(obs game.Observation) protocol.Action {
	if len(obs.Legal) == 0 {
		return pass(obs)
	}

	switch obs.Phase {
	case protocol.Select:
		return obs.Legal[b.selectCard(obs)]
	case protocol.Choose:
		if len(obs.Options) == 0 {
			return obs.Legal[0]
		}
		return obs.Legal[chooseOption(obs, b.opts.TokenWeight, nil)]
	}
	return obs.Legal[0]
}

// selectCard values each card at rank × P(every opponent plays higher),
// treating the opponents' cards as independent draws from the unseen pool
func (b *GreedyBot) selectCard(obs game.Observation) int {
	unseen := obs.Unseen()
	opponents := float64(len(obs.Opponents()))

	values := make([]float64, len(obs.Hand))
	for i, card := range obs.Hand {
		values[i] = float64(card.Rank()) * math.Pow(fractionAbove(unseen, card), opponents)
	}
	return argmax(values)
}

func fractionAbove(pool []deck.Card, card deck.Card) float64 {
	if len(pool) == 0 {
		return 1
	}
	above := 0
	for _, c := range pool {
		if c > card {
			above++
		}
	}
	return float64(above) / float64(len(pool))
}

func chooseOption(obs game.Observation, tokenWeight float64, guess []protocol.Option) int {
	return argmax(optionValues(obs, tokenWeight, guess))
}

// optionValues resolves the round once per option.
// Other qualifying seats stand unless guess supplies their choices.
func optionValues(obs game.Observation, tokenWeight float64, guess []protocol.Option) []float64 {
	rules := obs.Rules()
	contest := obs.Contest()
	for seat, choice := range guess {
		if seat != obs.Seat {
			contest = contest.WithChoice(seat, choice)
		}
	}

	values := make([]float64, len(obs.Options))
	for i, option := range obs.Options {
		values[i] = roundValue(rules.Resolve(contest.WithChoice(obs.Seat, option)), obs.Seat, tokenWeight)
	}
	return values
}

func roundValue(outcome game.Outcome, seat int, tokenWeight float64) float64 {
	v := float64(outcome.ScoreDeltas[seat])
	if outcome.Loser == seat {
		v -= tokenWeight
	}
	return v
}
