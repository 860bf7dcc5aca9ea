package bots

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

// SearchMode decides how the values of several determinizations are combined
type SearchMode int

const (
	Sampled SearchMode = iota
	WorstCase
)

var SearchModeNames = map[SearchMode]string{
	Sampled:   "sampled",
	WorstCase: "worst-case",
}

var NameToSearchMode = map[string]SearchMode{
	"sampled":    Sampled,
	"worst-case": WorstCase,
}

var ErrUnknownSearchMode = errors.New("unknown search mode")

func (m SearchMode) String() string {
	return SearchModeNames[m]
}

func (m SearchMode) MarshalText() ([]byte, error) {
	name, ok := SearchModeNames[m]
	if !ok {
		return nil, ErrUnknownSearchMode
	}
	return []byte(name), nil
}

func (m *SearchMode) UnmarshalText(text []byte) error {
	mode, ok := NameToSearchMode[string(text)]
	if !ok {
		return ErrUnknownSearchMode
	}
	*m = mode
	return nil
}

type MinimaxOpts struct {
	// Depth is the number of rounds to look ahead. 0 searches until the game ends.
	Depth int
	Mode  SearchMode
	// Samples is the number of determinizations per decision
	Samples int
	// NodeBudget and TimeBudget cap a single decision; 0 disables them.
	// A time budget makes play depend on the machine.
	NodeBudget  int
	TimeBudget  time.Duration
	TokenWeight float64
	Seed        int64
}

func DefaultMinimaxOpts() MinimaxOpts {
	return MinimaxOpts{
		Depth:       2,
		Mode:        Sampled,
		Samples:     8,
		NodeBudget:  200000,
		TokenWeight: 3,
	}
}

const (
	// winValue dwarfs any score difference a game can produce
	winValue = 1e6
	// searchCap bounds an unlimited depth when the game sets no round cap
	searchCap = 64
)

// MinimaxBot resolves hidden cards by sampling them, then searches each sample as a game of
// perfect information: it maximises over its own moves against the opponents' worst joint reply.
// Searches deepen a round at a time; when the budget runs out it plays the deepest complete answer.
type MinimaxBot struct {
	opts     MinimaxOpts
	rng      *rand.Rand
	fallback *GreedyBot

	seat     int
	nodes    int
	deadline time.Time
	// exhausted is set when the budget ran out during the current iteration
	exhausted bool
	// horizon is set when some line was cut short by the depth limit
	horizon bool
}

func NewMinimaxBot(opts MinimaxOpts) *MinimaxBot {
	if opts.Samples <= 0 {
		opts.Samples = 1
	}
	return &MinimaxBot{
		opts:     opts,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		fallback: NewGreedyBot(GreedyOpts{TokenWeight: opts.TokenWeight}),
	}
}

func (b *MinimaxBot) Name() string {
	return "minimax"
}

func (b *MinimaxBot) Decide(obs game.Observation) protocol.Action {
	if len(obs.Legal) == 0 {
		return pass(obs)
	}
	if len(obs.Legal) == 1 || (obs.Phase != protocol.Select && obs.Phase != protocol.Choose) {
		return obs.Legal[0]
	}
	if obs.Phase == protocol.Choose && len(obs.Options) == 0 {
		return obs.Legal[0]
	}

	samples := []*game.State{}
	for i := 0; i < b.opts.Samples; i++ {
		s, err := game.SampleState(obs, b.rng)
		if err != nil {
			continue
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return b.fallback.Decide(obs)
	}

	b.seat = obs.Seat
	b.nodes = 0
	if b.opts.TimeBudget > 0 {
		b.deadline = time.Now().Add(b.opts.TimeBudget)
	} else {
		b.deadline = time.Time{}
	}

	var best []float64
	for depth := 1; depth <= b.maxDepth(obs); depth++ {
		b.exhausted = false
		b.horizon = false

		values := b.rootValues(samples, obs, depth)
		if b.exhausted {
			break
		}
		best = values
		if !b.horizon {
			break
		}
	}

	if best == nil {
		return b.fallback.Decide(obs)
	}
	return obs.Legal[argmax(best)]
}

func (b *MinimaxBot) maxDepth(obs game.Observation) int {
	limit := searchCap
	if obs.Opts.MaxRounds > 0 {
		limit = obs.Opts.MaxRounds - obs.Round + 1
	}
	if b.opts.Depth > 0 && b.opts.Depth < limit {
		limit = b.opts.Depth
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// rootValues scores every legal action, combining samples according to the mode
func (b *MinimaxBot) rootValues(samples []*game.State, obs game.Observation, depth int) []float64 {
	values := make([]float64, len(obs.Legal))
	for i := range values {
		if b.opts.Mode == WorstCase {
			values[i] = math.Inf(1)
		}
	}

	for _, s := range samples {
		mine := b.distinctActions(s, b.seat)
		for _, a := range mine {
			v := b.minimise(s, a, depth, math.Inf(-1), math.Inf(1))
			if b.exhausted {
				return nil
			}
			for _, i := range sameCard(s, obs.Legal, a) {
				if b.opts.Mode == WorstCase {
					values[i] = math.Min(values[i], v)
				} else {
					values[i] += v / float64(len(samples))
				}
			}
		}
	}
	return values
}

// value is the worth of s to the searching seat, with roundsLeft full rounds still to explore
func (b *MinimaxBot) value(s *game.State, roundsLeft int, alpha, beta float64) float64 {
	s, roundsLeft = b.settle(s, roundsLeft)
	if s == nil {
		return math.Inf(-1)
	}
	if s.Terminal || s.Players[b.seat].Eliminated {
		return b.evaluate(s)
	}
	if roundsLeft <= 0 {
		b.horizon = true
		return b.evaluate(s)
	}
	if b.spent() {
		b.exhausted = true
		return b.evaluate(s)
	}

	mine := b.distinctActions(s, b.seat)
	if len(mine) == 0 {
		return b.minimise(s, nil, roundsLeft, alpha, beta)
	}

	best := math.Inf(-1)
	for _, a := range mine {
		v := b.minimise(s, a, roundsLeft, alpha, beta)
		if v > best {
			best = v
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta || b.exhausted {
			break
		}
	}
	return best
}

// minimise plays mine against every joint reply and keeps the worst for the searching seat
func (b *MinimaxBot) minimise(s *game.State, mine []protocol.Action, roundsLeft int, alpha, beta float64) float64 {
	worst := math.Inf(1)
	for _, reply := range b.jointReplies(s) {
		actions := append(append([]protocol.Action{}, mine...), reply...)
		next, err := game.Advance(s, actions)
		if err != nil {
			continue
		}

		v := b.value(next, roundsLeft, alpha, beta)
		if v < worst {
			worst = v
		}
		if worst < beta {
			beta = worst
		}
		if alpha >= beta || b.exhausted {
			break
		}
	}
	return worst
}

// settle advances through phases where nobody decides, counting finished rounds
func (b *MinimaxBot) settle(s *game.State, roundsLeft int) (*game.State, int) {
	for !s.Terminal && (s.Phase == protocol.Reveal || s.Phase == protocol.Resolve) {
		resolving := s.Phase == protocol.Resolve
		next, err := game.Advance(s, nil)
		if err != nil {
			return nil, roundsLeft
		}
		if resolving {
			roundsLeft--
		}
		s = next
	}
	return s, roundsLeft
}

func (b *MinimaxBot) spent() bool {
	b.nodes++
	if b.opts.NodeBudget > 0 && b.nodes > b.opts.NodeBudget {
		return true
	}
	return !b.deadline.IsZero() && time.Now().After(b.deadline)
}

// decides reports whether seat submits a decision in the current phase
func decides(s *game.State, seat int) bool {
	if !s.Players[seat].Active() {
		return false
	}
	switch s.Phase {
	case protocol.Select:
		return true
	case protocol.Choose:
		return s.Opts.RuleSet().Qualifies(s.Contest(), seat)
	}
	return false
}

// distinctActions lists seat's choices, keeping one card per rank
func (b *MinimaxBot) distinctActions(s *game.State, seat int) [][]protocol.Action {
	if !decides(s, seat) {
		return nil
	}
	legal := s.LegalActions(seat)
	out := [][]protocol.Action{}
	seen := map[deck.Card]bool{}
	for _, a := range legal {
		if s.Phase == protocol.Select {
			card := s.Players[seat].Hand[a.Index]
			if seen[card] {
				continue
			}
			seen[card] = true
		}
		out = append(out, []protocol.Action{a})
	}
	return out
}

// jointReplies is every combination of the opponents' distinct actions
func (b *MinimaxBot) jointReplies(s *game.State) [][]protocol.Action {
	replies := [][]protocol.Action{{}}
	for seat := range s.Players {
		if seat == b.seat {
			continue
		}
		options := b.distinctActions(s, seat)
		if len(options) == 0 {
			continue
		}
		grown := make([][]protocol.Action, 0, len(replies)*len(options))
		for _, reply := range replies {
			for _, option := range options {
				joint := append(append([]protocol.Action{}, reply...), option...)
				grown = append(grown, joint)
			}
		}
		replies = grown
	}
	return replies
}

// evaluate scores s for the searching seat. Finished games are valued by placing,
// everything else by score difference plus remaining tokens.
func (b *MinimaxBot) evaluate(s *game.State) float64 {
	me := s.Players[b.seat]
	bestOpponent := math.Inf(-1)
	for seat, p := range s.Players {
		if seat != b.seat && p.Active() && float64(p.Score) > bestOpponent {
			bestOpponent = float64(p.Score)
		}
	}
	if math.IsInf(bestOpponent, -1) {
		bestOpponent = 0
	}
	v := float64(me.Score) - bestOpponent + b.opts.TokenWeight*float64(me.Tokens)

	if !s.Terminal && !me.Eliminated {
		return v
	}

	ranks := s.Ranks()
	var above, below int
	for seat, r := range ranks {
		switch {
		case seat == b.seat:
		case r < ranks[b.seat]:
			above++
		case r > ranks[b.seat]:
			below++
		}
	}
	return winValue*float64(below-above)/float64(len(ranks)-1) + v
}

// sameCard maps a root action onto every legal index that plays the same rank
func sameCard(s *game.State, legal []protocol.Action, a []protocol.Action) []int {
	if len(a) == 0 {
		return nil
	}
	if s.Phase != protocol.Select {
		return []int{a[0].Index}
	}
	hand := s.Players[a[0].Seat].Hand
	out := []int{}
	for i, l := range legal {
		if hand[l.Index] == hand[a[0].Index] {
			out = append(out, i)
		}
	}
	return out
}
