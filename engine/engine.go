package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

type GameEngineOpts struct {
	GameOpts game.RemoveOneOpts
	// Bots are seated in order: Bots[i] plays seat i
	Bots []bots.Bot
	// SeatNames label the seats in the record; the bots' own names are used when empty
	SeatNames []string
	Seed      int64
	Logger    logrus.FieldLogger
	// ParallelDecisions asks every seat for its decision at once.
	// The result does not depend on it as long as the bots share no state.
	ParallelDecisions bool
	// Hooks are called with every state the game passes through, starting with the deal
	Hooks []func(*game.State)
	// ProfileDecisions times every Decide call into Record.Decisions.
	// Timings differ between runs, so a profiled record's Log is not reproducible.
	ProfileDecisions bool
}

// ForfeitError is a bot losing its game by submitting an invalid action.
// Seat is the seat of the bot that decided; it unwraps to the *game.InvalidActionError.
type ForfeitError struct {
	Seat int
	Bot  string
	Err  error
}

func (e *ForfeitError) Error() string {
	return fmt.Sprintf("seat %d (%s) forfeits: %v", e.Seat, e.Bot, e.Err)
}

func (e *ForfeitError) Unwrap() error {
	return e.Err
}

// GameEngine plays one game between a set of bots and records it
type GameEngine struct {
	id   string
	opts GameEngineOpts
	log  logrus.FieldLogger
}

func NewGameEngine(opts GameEngineOpts) (*GameEngine, error) {
	if err := opts.GameOpts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Bots) != opts.GameOpts.Players {
		return nil, &game.ConfigurationError{
			Field:  "bots",
			Reason: fmt.Sprintf("got %d bots for %d players", len(opts.Bots), opts.GameOpts.Players),
		}
	}
	for seat, b := range opts.Bots {
		if b == nil {
			return nil, &game.ConfigurationError{Field: "bots", Reason: fmt.Sprintf("seat %d has no bot", seat)}
		}
	}
	if len(opts.SeatNames) == 0 {
		opts.SeatNames = seatNames(opts.Bots)
	}
	if len(opts.SeatNames) != len(opts.Bots) {
		return nil, &game.ConfigurationError{Field: "seat names", Reason: "must name every seat"}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	id := GameID(opts.Seed, opts.SeatNames)
	return &GameEngine{
		id:   id,
		opts: opts,
		log:  opts.Logger.WithField("game_id", id),
	}, nil
}

// GameID names a game after its seed and seating, so a replay gets the same ID
func GameID(seed int64, seats []string) string {
	name := fmt.Sprintf("removeone/%d/%s", seed, strings.Join(seats, ","))
	return uuid.NewV5(uuid.NamespaceOID, name).String()
}

func (e *GameEngine) ID() string {
	return e.id
}

// Run plays the game to the end. If a bot submits an invalid action the game stops there;
// the record of what was played so far is returned along with the error.
func (e *GameEngine) Run(ctx context.Context) (*Record, error) {
	record := &Record{
		ID:    e.id,
		Seed:  e.opts.Seed,
		Seats: append([]string{}, e.opts.SeatNames...),
		Opts:  e.opts.GameOpts,
		Steps: []Step{},
	}
	if e.opts.ProfileDecisions {
		record.Decisions = make([]DecisionStats, len(e.opts.Bots))
	}

	state, err := game.NewRemoveOne(e.opts.GameOpts, e.opts.Seed)
	if err != nil {
		record.Error = err.Error()
		return record, err
	}
	e.notify(state)
	e.log.WithField("seed", e.opts.Seed).Debug("game started")

	for !state.Terminal {
		if err := ctx.Err(); err != nil {
			record.Final = state
			record.Error = err.Error()
			e.log.WithError(err).Warn("game cancelled")
			return record, err
		}

		actions, err := e.collect(state, record.Decisions)
		record.Steps = append(record.Steps, Step{
			Round:   state.Round,
			Phase:   state.Phase,
			State:   state,
			Actions: actions,
		})

		var next *game.State
		if err == nil {
			next, err = game.Advance(state, actions)
			err = e.forfeit(err)
		}
		if err != nil {
			record.Final = state
			record.Error = err.Error()
			fields := logrus.Fields{
				"round": state.Round,
				"phase": state.Phase.String(),
			}
			var forfeit *ForfeitError
			if errors.As(err, &forfeit) {
				fields["seat"] = forfeit.Seat
				fields["bot"] = forfeit.Bot
			}
			e.log.WithError(err).WithFields(fields).Error("game aborted")
			return record, err
		}

		if next.LastOutcome != nil && state.Phase == protocol.Resolve {
			e.logOutcome(state.Round, next)
		}

		state = next
		e.notify(state)
	}

	record.Final = state
	record.Standings = state.Standings()
	e.log.WithField("rounds", state.Round).Debug("game over")
	return record, nil
}

// collect asks the seats that have to act for their decisions. Seats that qualify for nothing
// during CHOOSE pass. A bot answering for any seat but its own forfeits. When profile is not nil
// each decision's duration is added to its seat.
func (e *GameEngine) collect(s *game.State, profile []DecisionStats) ([]protocol.Action, error) {
	var seats []int
	switch s.Phase {
	case protocol.Select:
		seats = s.ActiveSeats()
	case protocol.Choose:
		seats = s.Qualifying()
	default:
		return []protocol.Action{}, nil
	}

	decisions := make([]*protocol.Action, len(s.Players))
	decide := func(seat int) {
		start := time.Now()
		a := e.opts.Bots[seat].Decide(s.Observe(seat))
		if profile != nil {
			profile[seat].add(time.Since(start))
		}
		decisions[seat] = &a
	}

	if e.opts.ParallelDecisions {
		var wg sync.WaitGroup
		for _, seat := range seats {
			wg.Add(1)
			go func(seat int) {
				defer wg.Done()
				decide(seat)
			}(seat)
		}
		wg.Wait()
	} else {
		for _, seat := range seats {
			decide(seat)
		}
	}

	var err error
	actions := []protocol.Action{}
	for seat, p := range s.Players {
		switch {
		case decisions[seat] != nil:
			a := *decisions[seat]
			if a.Seat != seat && err == nil {
				err = &ForfeitError{
					Seat: seat,
					Bot:  e.opts.SeatNames[seat],
					Err:  &game.InvalidActionError{Action: a, Phase: s.Phase, Reason: "action for another seat"},
				}
			}
			actions = append(actions, a)
		case s.Phase == protocol.Choose && p.Active():
			actions = append(actions, protocol.PassAction(seat))
		}
	}
	return actions, err
}

// forfeit pins an invalid action from Advance on the bot that submitted it. collect has
// already checked every action is for the deciding bot's seat.
func (e *GameEngine) forfeit(err error) error {
	var actionErr *game.InvalidActionError
	if !errors.As(err, &actionErr) {
		return err
	}
	seat := actionErr.Action.Seat
	if seat < 0 || seat >= len(e.opts.SeatNames) {
		return err
	}
	return &ForfeitError{Seat: seat, Bot: e.opts.SeatNames[seat], Err: err}
}

func (e *GameEngine) notify(s *game.State) {
	for seat, b := range e.opts.Bots {
		if o, ok := b.(bots.Observer); ok {
			o.Observe(s.Observe(seat))
		}
	}
	for _, hook := range e.opts.Hooks {
		hook(s)
	}
}

func (e *GameEngine) logOutcome(round int, s *game.State) {
	outcome := s.LastOutcome
	fields := logrus.Fields{
		"round":  round,
		"winner": outcome.Winner,
		"loser":  outcome.Loser,
	}
	if outcome.Loser != game.NoSeat && s.Players[outcome.Loser].Eliminated {
		fields["eliminated"] = outcome.Loser
	}
	e.log.WithFields(fields).Debug("round resolved")
}

func seatNames(bs []bots.Bot) []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		if b != nil {
			names[i] = b.Name()
		}
	}
	return names
}
