package bots

import (
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

// Bot decides an action from its own view of the game.
// Decide is only called when the seat has to act, and must return one of obs.Legal.
type Bot interface {
	Name() string
	Decide(obs game.Observation) protocol.Action
}

// Observer is implemented by bots that keep memory between decisions.
// The engine calls Observe after every transition, including ones the bot took no part in.
type Observer interface {
	Observe(obs game.Observation)
}

// Factory builds a fresh bot for one game
type Factory func(seed int64) Bot

func RandomFactory() Factory {
	return func(seed int64) Bot {
		return NewRandomBot(seed)
	}
}

func GreedyFactory(opts GreedyOpts) Factory {
	return func(seed int64) Bot {
		return NewGreedyBot(opts)
	}
}

func CardCountingFactory(opts CardCountingOpts) Factory {
	return func(seed int64) Bot {
		return NewCardCountingBot(opts)
	}
}

// MinimaxFactory seeds every bot it builds from the game, ignoring opts.Seed
func MinimaxFactory(opts MinimaxOpts) Factory {
	return func(seed int64) Bot {
		o := opts
		o.Seed = seed
		return NewMinimaxBot(o)
	}
}

func pass(obs game.Observation) protocol.Action {
	return protocol.PassAction(obs.Seat)
}

// argmax returns the index of the highest value, preferring the lowest index on ties
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
