package bots

import (
	"math/rand"

	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

// RandomBot plays any legal action with equal probability
type RandomBot struct {
	rng *rand.Rand
}

func NewRandomBot(seed int64) *RandomBot {
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) Name() string {
	return "random"
}

func (b *RandomBot) Decide(obs game.Observation) protocol.Action {
	if len(obs.Legal) == 0 {
		return pass(obs)
	}
	return obs.Legal[b.rng.Intn(len(obs.Legal))]
}
