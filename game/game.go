package game

import (
	"math/rand"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/protocol"
)

// State is an immutable snapshot of one game of Remove One.
// Advance returns successors; nothing ever modifies a State once it has been handed out.
type State struct {
	Round            int               `json:"round"`
	Phase            protocol.Phase    `json:"phase"`
	Players          []Player          `json:"players"`
	Deck             deck.Deck         `json:"deck"`
	Discard          []deck.Card       `json:"discard"`
	Removed          []deck.Card       `json:"removed"`
	Committed        []deck.Card       `json:"committed"`
	Choices          []protocol.Option `json:"choices"`
	EliminationOrder []int             `json:"eliminationOrder"`
	LastOutcome      *Outcome          `json:"lastOutcome,omitempty"`
	Terminal         bool              `json:"terminal"`
	TotalCards       int               `json:"totalCards"`
	Opts             RemoveOneOpts     `json:"opts"`
}

// NewRemoveOne deals a fresh game. The seed fixes the shuffle.
func NewRemoveOne(opts RemoveOneOpts, seed int64) (*State, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	d := deck.New(opts.Composition)
	d.Shuffle(rand.New(rand.NewSource(seed)))

	s := &State{
		Round:            1,
		Phase:            protocol.Select,
		Players:          make([]Player, opts.Players),
		Discard:          []deck.Card{},
		Removed:          []deck.Card{},
		Committed:        make([]deck.Card, opts.Players),
		Choices:          make([]protocol.Option, opts.Players),
		EliminationOrder: []int{},
		TotalCards:       len(opts.Composition),
		Opts:             opts.clone(),
	}

	// initial card deal
	for seat := range s.Players {
		s.Players[seat] = Player{
			Seat:   seat,
			Hand:   deck.Sorted(d.Deal(opts.HandSize)),
			Tokens: opts.Tokens,
		}
	}
	s.Deck = d

	if err := s.checkConsistency(); err != nil {
		return nil, err
	}
	return s, nil
}

// Advance applies the actions collected for the current phase and returns the next state.
// The receiver is left untouched.
func Advance(s *State, actions []protocol.Action) (*State, error) {
	if s == nil {
		return nil, ErrNilState
	}
	if s.Terminal {
		if len(actions) > 0 {
			return nil, invalid(s, actions[0], "game is already over")
		}
		return nil, violation(s, "advance called on a terminal state")
	}

	bySeat, err := s.indexActions(actions)
	if err != nil {
		return nil, err
	}

	next := s.clone()
	switch s.Phase {
	case protocol.Select:
		err = next.applySelect(bySeat)
	case protocol.Reveal:
		err = next.applyReveal(bySeat)
	case protocol.Choose:
		err = next.applyChoose(bySeat)
	case protocol.Resolve:
		err = next.applyResolve(bySeat)
	default:
		err = violation(s, "unknown phase")
	}
	if err != nil {
		return nil, err
	}

	if err := checkTransition(s, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *State) indexActions(actions []protocol.Action) ([]*protocol.Action, error) {
	bySeat := make([]*protocol.Action, len(s.Players))
	for i := range actions {
		a := actions[i]
		if a.Seat < 0 || a.Seat >= len(s.Players) {
			return nil, invalid(s, a, "unknown seat")
		}
		if s.Players[a.Seat].Eliminated {
			return nil, invalid(s, a, "seat %d is eliminated", a.Seat)
		}
		if bySeat[a.Seat] != nil {
			return nil, violation(s, "duplicate action from seat %d", a.Seat)
		}
		bySeat[a.Seat] = &a
	}
	return bySeat, nil
}

// step 1 of 4: every active seat commits a card face down
func (s *State) applySelect(bySeat []*protocol.Action) error {
	for seat, p := range s.Players {
		if !p.Active() {
			continue
		}
		a := bySeat[seat]
		if a == nil {
			return violation(s, "no selection collected from seat %d", seat)
		}
		if a.Kind != protocol.SelectCard {
			return invalid(s, *a, "expected a card selection")
		}
		if a.Index < 0 || a.Index >= len(p.Hand) {
			return invalid(s, *a, "card index out of range")
		}
	}

	for seat := range s.Players {
		if !s.Players[seat].Active() {
			continue
		}
		s.Committed[seat] = s.Players[seat].take(bySeat[seat].Index)
	}

	s.Phase = protocol.Reveal
	return nil
}

// step 2 of 4: committed cards become public
func (s *State) applyReveal(bySeat []*protocol.Action) error {
	if err := s.onlyPasses(bySeat); err != nil {
		return err
	}
	s.Phase = protocol.Choose
	return nil
}

// step 3 of 4: seats that qualify pick one of the options the rules offer
func (s *State) applyChoose(bySeat []*protocol.Action) error {
	rules := s.Opts.RuleSet()
	contest := s.Contest()

	for seat, p := range s.Players {
		if !p.Active() {
			continue
		}
		a := bySeat[seat]
		options := rules.Options(contest, seat)

		if len(options) == 0 {
			if a != nil && a.Kind != protocol.Pass {
				return invalid(s, *a, "seat %d does not qualify to choose", seat)
			}
			continue
		}

		if a == nil {
			return violation(s, "no choice collected from qualifying seat %d", seat)
		}
		if a.Kind != protocol.ChooseOption {
			return invalid(s, *a, "expected a choice")
		}
		if a.Index < 0 || a.Index >= len(options) {
			return invalid(s, *a, "option index out of range")
		}
		s.Choices[seat] = options[a.Index]
	}

	s.Phase = protocol.Resolve
	return nil
}

// step 4 of 4: score the round, handle any elimination and refill hands
func (s *State) applyResolve(bySeat []*protocol.Action) error {
	if err := s.onlyPasses(bySeat); err != nil {
		return err
	}

	outcome := s.Opts.RuleSet().Resolve(s.Contest())
	if len(outcome.ScoreDeltas) != len(s.Players) {
		return violation(s, "rules returned %d score deltas for %d players", len(outcome.ScoreDeltas), len(s.Players))
	}
	if outcome.Loser != NoSeat && s.Committed[outcome.Loser] == deck.NoCard {
		return violation(s, "rules eliminated a card from seat %d, which committed none", outcome.Loser)
	}

	for seat, card := range s.Committed {
		if card == deck.NoCard {
			continue
		}
		switch {
		case s.Choices[seat] == protocol.Withdraw:
			s.Players[seat].give(card)
		case seat == outcome.Loser:
			s.Removed = append(s.Removed, card)
		default:
			s.Discard = append(s.Discard, card)
		}
	}

	// score deltas land together, before anyone is eliminated
	for seat := range s.Players {
		s.Players[seat].Score += outcome.ScoreDeltas[seat]
	}
	if outcome.Winner != NoSeat {
		s.Players[outcome.Winner].LastWinRound = s.Round
	}

	if outcome.Loser != NoSeat {
		loser := &s.Players[outcome.Loser]
		loser.Tokens--
		if loser.Tokens == 0 {
			loser.Eliminated = true
			s.Discard = append(s.Discard, loser.Hand...)
			loser.Hand = []deck.Card{}
			s.EliminationOrder = append(s.EliminationOrder, outcome.Loser)
		}
	}

	s.Committed = make([]deck.Card, len(s.Players))
	s.Choices = make([]protocol.Option, len(s.Players))
	s.LastOutcome = &outcome

	s.replenishHands()

	if s.gameOver() {
		s.Phase = protocol.Terminal
		s.Terminal = true
		return nil
	}

	s.Round++
	s.Phase = protocol.Select
	return nil
}

func (s *State) replenishHands() {
	for seat := range s.Players {
		p := &s.Players[seat]
		if !p.Active() {
			continue
		}
		if missing := s.Opts.HandSize - len(p.Hand); missing > 0 {
			if missing > len(s.Deck) {
				missing = len(s.Deck)
			}
			p.give(s.Deck.Deal(missing)...)
		}
	}
}

// gameOver is evaluated once per RESOLVE
func (s *State) gameOver() bool {
	if s.ActiveCount() <= 1 || len(s.Deck) == 0 {
		return true
	}
	if s.Opts.MaxRounds > 0 && s.Round >= s.Opts.MaxRounds {
		return true
	}
	for _, p := range s.Players {
		if p.Active() && len(p.Hand) == 0 {
			return true
		}
	}
	return false
}

func (s *State) onlyPasses(bySeat []*protocol.Action) error {
	for _, a := range bySeat {
		if a != nil && a.Kind != protocol.Pass {
			return invalid(s, *a, "no decisions are taken during %s", s.Phase)
		}
	}
	return nil
}

// Contest returns the public view of the committed cards
func (s *State) Contest() Contest {
	c := Contest{
		Round:     s.Round,
		Committed: append([]deck.Card{}, s.Committed...),
		Choices:   append([]protocol.Option{}, s.Choices...),
		Scores:    make([]int, len(s.Players)),
		Tokens:    make([]int, len(s.Players)),
		Active:    make([]bool, len(s.Players)),
	}
	for seat, p := range s.Players {
		c.Scores[seat] = p.Score
		c.Tokens[seat] = p.Tokens
		c.Active[seat] = p.Active()
	}
	return c
}

// LegalActions lists what seat may submit in the current phase, in index order
func (s *State) LegalActions(seat int) []protocol.Action {
	if s.Terminal || seat < 0 || seat >= len(s.Players) || s.Players[seat].Eliminated {
		return nil
	}

	switch s.Phase {
	case protocol.Select:
		actions := make([]protocol.Action, len(s.Players[seat].Hand))
		for i := range actions {
			actions[i] = protocol.SelectAction(seat, i)
		}
		return actions

	case protocol.Choose:
		options := s.Opts.RuleSet().Options(s.Contest(), seat)
		if len(options) == 0 {
			return []protocol.Action{protocol.PassAction(seat)}
		}
		actions := make([]protocol.Action, len(options))
		for i := range actions {
			actions[i] = protocol.ChooseAction(seat, i)
		}
		return actions
	}

	return []protocol.Action{protocol.PassAction(seat)}
}

// Qualifying returns the seats that must make a choice this CHOOSE phase
func (s *State) Qualifying() []int {
	seats := []int{}
	if s.Phase != protocol.Choose {
		return seats
	}
	rules := s.Opts.RuleSet()
	contest := s.Contest()
	for seat, p := range s.Players {
		if p.Active() && rules.Qualifies(contest, seat) {
			seats = append(seats, seat)
		}
	}
	return seats
}

// ActiveSeats returns the seats still in the game
func (s *State) ActiveSeats() []int {
	seats := []int{}
	for seat, p := range s.Players {
		if p.Active() {
			seats = append(seats, seat)
		}
	}
	return seats
}

func (s *State) ActiveCount() int {
	return len(s.ActiveSeats())
}

// CardsInPlay counts every card that has not been removed from the game
func (s *State) CardsInPlay() int {
	n := len(s.Deck) + len(s.Discard)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	for _, c := range s.Committed {
		if c != deck.NoCard {
			n++
		}
	}
	return n
}

func (s *State) clone() *State {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Deck = s.Deck.Clone()
	out.Discard = append([]deck.Card{}, s.Discard...)
	out.Removed = append([]deck.Card{}, s.Removed...)
	out.Committed = append([]deck.Card{}, s.Committed...)
	out.Choices = append([]protocol.Option{}, s.Choices...)
	out.EliminationOrder = append([]int{}, s.EliminationOrder...)
	if s.LastOutcome != nil {
		outcome := *s.LastOutcome
		outcome.ScoreDeltas = append([]int{}, s.LastOutcome.ScoreDeltas...)
		out.LastOutcome = &outcome
	}
	out.Opts = s.Opts.clone()
	return &out
}
