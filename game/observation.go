package game

import (
	"errors"
	"math/rand"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/protocol"
)

var ErrCannotDeterminize = errors.New("observation cannot be completed into a state")

// PublicPlayer is what everybody knows about a seat
type PublicPlayer struct {
	Seat         int  `json:"seat"`
	Score        int  `json:"score"`
	Tokens       int  `json:"tokens"`
	HandSize     int  `json:"handSize"`
	Eliminated   bool `json:"eliminated"`
	LastWinRound int  `json:"lastWinRound"`
}

// Observation is one seat's view of the game. It never contains another seat's hidden cards.
type Observation struct {
	Seat             int               `json:"seat"`
	Round            int               `json:"round"`
	Phase            protocol.Phase    `json:"phase"`
	Hand             []deck.Card       `json:"hand"`
	Committed        deck.Card         `json:"committed"`
	Revealed         []deck.Card       `json:"revealed,omitempty"`
	Choices          []protocol.Option `json:"choices,omitempty"`
	Players          []PublicPlayer    `json:"players"`
	DeckSize         int               `json:"deckSize"`
	Discard          []deck.Card       `json:"discard"`
	Removed          []deck.Card       `json:"removed"`
	EliminationOrder []int             `json:"eliminationOrder"`
	LastOutcome      *Outcome          `json:"lastOutcome,omitempty"`
	Legal            []protocol.Action `json:"legal"`
	Options          []protocol.Option `json:"options,omitempty"`
	Terminal         bool              `json:"terminal"`
	Opts             RemoveOneOpts     `json:"opts"`
}

// Observe builds seat's view of s
func (s *State) Observe(seat int) Observation {
	obs := Observation{
		Seat:             seat,
		Round:            s.Round,
		Phase:            s.Phase,
		Hand:             append([]deck.Card{}, s.Players[seat].Hand...),
		Committed:        s.Committed[seat],
		Players:          make([]PublicPlayer, len(s.Players)),
		DeckSize:         len(s.Deck),
		Discard:          append([]deck.Card{}, s.Discard...),
		Removed:          append([]deck.Card{}, s.Removed...),
		EliminationOrder: append([]int{}, s.EliminationOrder...),
		Legal:            s.LegalActions(seat),
		Terminal:         s.Terminal,
		Opts:             s.Opts.clone(),
	}
	for i, p := range s.Players {
		obs.Players[i] = PublicPlayer{
			Seat:         p.Seat,
			Score:        p.Score,
			Tokens:       p.Tokens,
			HandSize:     len(p.Hand),
			Eliminated:   p.Eliminated,
			LastWinRound: p.LastWinRound,
		}
	}
	if s.LastOutcome != nil {
		outcome := *s.LastOutcome
		outcome.ScoreDeltas = append([]int{}, s.LastOutcome.ScoreDeltas...)
		obs.LastOutcome = &outcome
	}

	// committed cards are public from REVEAL onwards; choices only once everyone has chosen
	if s.Phase == protocol.Choose || s.Phase == protocol.Resolve {
		obs.Revealed = append([]deck.Card{}, s.Committed...)
	}
	if s.Phase == protocol.Resolve {
		obs.Choices = append([]protocol.Option{}, s.Choices...)
	}
	if s.Phase == protocol.Choose && !s.Players[seat].Eliminated {
		obs.Options = s.Opts.RuleSet().Options(s.Contest(), seat)
	}

	return obs
}

// Rules returns the rules the game is played under
func (o Observation) Rules() Rules {
	return o.Opts.RuleSet()
}

// Me returns the observing seat's public record
func (o Observation) Me() PublicPlayer {
	return o.Players[o.Seat]
}

// Opponents returns the other seats still in the game
func (o Observation) Opponents() []int {
	seats := []int{}
	for _, p := range o.Players {
		if p.Seat != o.Seat && !p.Eliminated {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// Contest rebuilds the public table. It is only meaningful once cards are revealed.
func (o Observation) Contest() Contest {
	c := Contest{
		Round:     o.Round,
		Committed: make([]deck.Card, len(o.Players)),
		Choices:   make([]protocol.Option, len(o.Players)),
		Scores:    make([]int, len(o.Players)),
		Tokens:    make([]int, len(o.Players)),
		Active:    make([]bool, len(o.Players)),
	}
	copy(c.Committed, o.Revealed)
	copy(c.Choices, o.Choices)
	for i, p := range o.Players {
		c.Scores[i] = p.Score
		c.Tokens[i] = p.Tokens
		c.Active[i] = !p.Eliminated
	}
	return c
}

// Unseen returns, in rank order, every card the observer cannot locate:
// other seats' hidden cards plus the deck.
func (o Observation) Unseen() []deck.Card {
	counts := deck.Counts(deck.New(o.Opts.Composition))

	seen := append([]deck.Card{}, o.Hand...)
	seen = append(seen, o.Committed)
	seen = append(seen, o.Discard...)
	seen = append(seen, o.Removed...)
	for seat, card := range o.Revealed {
		if seat != o.Seat {
			seen = append(seen, card)
		}
	}

	for card, n := range deck.Counts(seen) {
		counts[card] -= n
	}

	unseen := []deck.Card{}
	for rank := deck.Card(1); int(rank) <= maxRank(o.Opts.Composition); rank++ {
		for i := 0; i < counts[rank]; i++ {
			unseen = append(unseen, rank)
		}
	}
	return unseen
}

// hiddenCommitted reports whether other seats have committed cards the observer cannot see
func (o Observation) hiddenCommitted() bool {
	return o.Phase == protocol.Reveal
}

// Determinize builds a full state consistent with the observation, given a guess for every other
// seat's hand and the deck order. hands is indexed by seat; the observer's own entry is ignored.
func Determinize(o Observation, hands [][]deck.Card, rest deck.Deck) (*State, error) {
	if o.hiddenCommitted() || o.Terminal {
		return nil, ErrCannotDeterminize
	}
	if len(hands) != len(o.Players) || len(rest) != o.DeckSize {
		return nil, ErrCannotDeterminize
	}

	s := &State{
		Round:            o.Round,
		Phase:            o.Phase,
		Players:          make([]Player, len(o.Players)),
		Deck:             rest.Clone(),
		Discard:          append([]deck.Card{}, o.Discard...),
		Removed:          append([]deck.Card{}, o.Removed...),
		Committed:        make([]deck.Card, len(o.Players)),
		Choices:          make([]protocol.Option, len(o.Players)),
		EliminationOrder: append([]int{}, o.EliminationOrder...),
		TotalCards:       len(o.Opts.Composition),
		Opts:             o.Opts.clone(),
	}
	copy(s.Committed, o.Revealed)
	s.Committed[o.Seat] = o.Committed
	copy(s.Choices, o.Choices)

	for i, p := range o.Players {
		hand := hands[i]
		if i == o.Seat {
			hand = o.Hand
		}
		if len(hand) != p.HandSize {
			return nil, ErrCannotDeterminize
		}
		s.Players[i] = Player{
			Seat:         p.Seat,
			Hand:         deck.Sorted(hand),
			Score:        p.Score,
			Tokens:       p.Tokens,
			Eliminated:   p.Eliminated,
			LastWinRound: p.LastWinRound,
		}
	}

	if err := s.checkConsistency(); err != nil {
		return nil, ErrCannotDeterminize
	}
	return s, nil
}

// SampleState deals the unseen cards at random into the other seats' hands and the deck
func SampleState(o Observation, rng *rand.Rand) (*State, error) {
	pool := deck.Deck(o.Unseen())
	pool.Shuffle(rng)

	hands := make([][]deck.Card, len(o.Players))
	for _, p := range o.Players {
		if p.Seat == o.Seat {
			continue
		}
		if p.HandSize > len(pool) {
			return nil, ErrCannotDeterminize
		}
		hands[p.Seat] = pool.Deal(p.HandSize)
	}
	return Determinize(o, hands, pool)
}

func maxRank(composition []int) int {
	max := 0
	for _, r := range composition {
		if r > max {
			max = r
		}
	}
	return max
}
