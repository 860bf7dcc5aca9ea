package bots

import (
	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

type CardCountingOpts struct {
	// TokenWeight is the cost of losing a token, in points
	TokenWeight float64
}

func DefaultCardCountingOpts() CardCountingOpts {
	return CardCountingOpts{TokenWeight: 3}
}

// CardCountingBot tracks every card it has seen and keeps a belief about each opponent's hand.
// It must be notified through Observe to learn anything; without it the bot plays off the flat pool.
type CardCountingBot struct {
	opts    CardCountingOpts
	maxRank int
	beliefs []Belief
	// pool counts the unseen cards not known to be in any particular hand, by rank
	pool     []float64
	previous *game.Observation
}

func NewCardCountingBot(opts CardCountingOpts) *CardCountingBot {
	return &CardCountingBot{opts: opts}
}

func (b *CardCountingBot) Name() string {
	return "cardcounting"
}

// Belief returns the current belief about seat
func (b *CardCountingBot) Belief(seat int) Belief {
	if seat < 0 || seat >= len(b.beliefs) {
		return Belief{}
	}
	belief := b.beliefs[seat]
	return Belief{
		Dist:  append(Distribution{}, belief.Dist...),
		Known: append([]deck.Card{}, belief.Known...),
	}
}

func (b *CardCountingBot) Observe(obs game.Observation) {
	if b.beliefs == nil || len(b.beliefs) != len(obs.Players) {
		b.reset(obs)
	}

	switch obs.Phase {
	case protocol.Choose:
		b.observeReveal(obs)
	case protocol.Resolve:
		b.observeChoices(obs)
	case protocol.Select, protocol.Terminal:
		b.observeRefill(obs)
	}

	prev := obs
	b.previous = &prev
}

func (b *CardCountingBot) reset(obs game.Observation) {
	b.maxRank = 0
	for _, r := range obs.Opts.Composition {
		if r > b.maxRank {
			b.maxRank = r
		}
	}
	b.beliefs = make([]Belief, len(obs.Players))
	b.pool = counts(obs.Unseen(), b.maxRank)
	prior := b.prior()
	for _, seat := range obs.Opponents() {
		b.beliefs[seat] = Belief{Dist: prior, Known: []deck.Card{}}
	}
	b.previous = nil
}

func (b *CardCountingBot) prior() Distribution {
	return Normalize(Distribution(b.pool))
}

// observeReveal handles the committed cards turning face up. The opponent that played a rank
// loses all belief in it; everyone else is rescaled by the copies left.
func (b *CardCountingBot) observeReveal(obs game.Observation) {
	for seat, card := range obs.Revealed {
		if seat == obs.Seat || card == deck.NoCard || seat >= len(b.beliefs) {
			continue
		}
		b.beliefs[seat], _ = b.beliefs[seat].forget(card)
	}

	factors := b.recount(obs)
	for _, seat := range obs.Opponents() {
		belief := b.beliefs[seat]
		belief.Dist = Rescale(belief.Dist, factors)
		if seat < len(obs.Revealed) && obs.Revealed[seat] != deck.NoCard {
			belief.Dist = Exclude(belief.Dist, obs.Revealed[seat])
		}
		b.beliefs[seat] = belief
	}
}

// observeChoices remembers withdrawn cards, which go straight back to their owner's hand
func (b *CardCountingBot) observeChoices(obs game.Observation) {
	for seat, choice := range obs.Choices {
		if seat == obs.Seat || seat >= len(obs.Revealed) || seat >= len(b.beliefs) {
			continue
		}
		if choice == protocol.Withdraw && obs.Revealed[seat] != deck.NoCard {
			b.beliefs[seat].Known = append(b.beliefs[seat].Known, obs.Revealed[seat])
		}
	}
}

// observeRefill accounts for discarded hands and mixes the pool back in for cards drawn from the deck
func (b *CardCountingBot) observeRefill(obs game.Observation) {
	factors := b.recount(obs)
	prior := b.prior()

	for seat, p := range obs.Players {
		if seat == obs.Seat || seat >= len(b.beliefs) {
			continue
		}
		if p.Eliminated {
			b.beliefs[seat] = Belief{Dist: make(Distribution, b.maxRank+1), Known: []deck.Card{}}
			continue
		}

		belief := b.beliefs[seat]
		belief.Dist = Rescale(belief.Dist, factors)
		if drawn := b.drawn(obs, seat); drawn > 0 && p.HandSize > 0 {
			belief.Dist = Mix(belief.Dist, prior, float64(drawn)/float64(p.HandSize))
		}
		b.beliefs[seat] = belief
	}
}

// drawn estimates how many cards seat took from the deck since the previous observation
func (b *CardCountingBot) drawn(obs game.Observation, seat int) int {
	if b.previous == nil || b.previous.Phase != protocol.Resolve {
		return 0
	}
	before := b.previous.Players[seat].HandSize
	if seat < len(b.previous.Choices) && b.previous.Choices[seat] == protocol.Withdraw {
		before++
	}
	if drawn := obs.Players[seat].HandSize - before; drawn > 0 {
		return drawn
	}
	return 0
}

// recount rebuilds the pool and returns, per rank, the fraction of copies still unplaced
func (b *CardCountingBot) recount(obs game.Observation) []float64 {
	next := counts(obs.Unseen(), b.maxRank)
	for seat, belief := range b.beliefs {
		if seat == obs.Seat {
			continue
		}
		for _, c := range belief.Known {
			if int(c) < len(next) && next[c] > 0 {
				next[c]--
			}
		}
	}

	factors := make([]float64, len(next))
	for r := range next {
		switch {
		case r < len(b.pool) && b.pool[r] > 0:
			factors[r] = next[r] / b.pool[r]
		case next[r] > 0:
			factors[r] = 1
		}
	}
	b.pool = next
	return factors
}

func (b *CardCountingBot) Decide(obs game.Observation) protocol.Action {
	if len(obs.Legal) == 0 {
		return pass(obs)
	}
	if b.beliefs == nil || len(b.beliefs) != len(obs.Players) {
		b.reset(obs)
	}

	switch obs.Phase {
	case protocol.Select:
		return obs.Legal[b.selectCard(obs)]
	case protocol.Choose:
		if len(obs.Options) == 0 {
			return obs.Legal[0]
		}
		return obs.Legal[b.chooseOption(obs)]
	}
	return obs.Legal[0]
}

// selectCard weighs the chance of winning the round against the chance of holding the
// highest card on the table, which is the one that gets removed
func (b *CardCountingBot) selectCard(obs game.Observation) int {
	prior := b.prior()
	plays := []Distribution{}
	for _, seat := range obs.Opponents() {
		plays = append(plays, b.beliefs[seat].Play(obs.Players[seat].HandSize, prior))
	}

	values := make([]float64, len(obs.Hand))
	for i, card := range obs.Hand {
		win, lose := 1.0, 1.0
		for _, play := range plays {
			win *= play.Above(card)
			lose *= play.Below(card)
		}
		if len(plays) == 0 {
			lose = 0
		}
		values[i] = float64(card.Rank())*win - b.opts.TokenWeight*lose
	}
	return argmax(values)
}

// chooseOption averages each option over every combination of the other qualifying seats' choices
func (b *CardCountingBot) chooseOption(obs game.Observation) int {
	rules := obs.Rules()
	contest := obs.Contest()

	others := []int{}
	for _, seat := range obs.Opponents() {
		if rules.Qualifies(contest, seat) {
			others = append(others, seat)
		}
	}

	totals := make([]float64, len(obs.Options))
	guess := make([]protocol.Option, len(obs.Players))
	var enumerate func(i int)
	enumerate = func(i int) {
		if i == len(others) {
			for j, v := range optionValues(obs, b.opts.TokenWeight, guess) {
				totals[j] += v
			}
			return
		}
		for _, option := range rules.Options(contest, others[i]) {
			guess[others[i]] = option
			enumerate(i + 1)
		}
		guess[others[i]] = protocol.Stand
	}
	enumerate(0)

	return argmax(totals)
}

func counts(cards []deck.Card, maxRank int) []float64 {
	out := make([]float64, maxRank+1)
	for _, c := range cards {
		if c > deck.NoCard && int(c) <= maxRank {
			out[c]++
		}
	}
	return out
}
