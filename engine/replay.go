package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/protocol"
	"github.com/sirupsen/logrus"
)

var ErrDiverged = errors.New("replay diverged from record")

// DivergenceError names the first step where a replay did something the record did not
type DivergenceError struct {
	Step int
	Want []protocol.Action
	Got  []protocol.Action
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("replay diverged at step %d: recorded %v, replayed %v", e.Step, e.Want, e.Got)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDiverged
}

// Replay plays the recorded game again with fresh bots and checks it goes the same way
func Replay(ctx context.Context, record *Record, players []bots.Bot, logger logrus.FieldLogger) (*Record, error) {
	e, err := NewGameEngine(GameEngineOpts{
		GameOpts:  record.Opts,
		Bots:      players,
		SeatNames: record.Seats,
		Seed:      record.Seed,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	replayed, runErr := e.Run(ctx)

	for i := 0; i < len(record.Steps) && i < len(replayed.Steps); i++ {
		want, got := record.Steps[i], replayed.Steps[i]
		if want.Phase != got.Phase || !reflect.DeepEqual(want.Actions, got.Actions) {
			return replayed, &DivergenceError{Step: i, Want: want.Actions, Got: got.Actions}
		}
	}
	if len(record.Steps) != len(replayed.Steps) {
		step := len(record.Steps)
		if len(replayed.Steps) < step {
			step = len(replayed.Steps)
		}
		return replayed, &DivergenceError{Step: step}
	}
	return replayed, runErr
}
