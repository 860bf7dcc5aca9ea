package engine

import (
	"fmt"
	"io"

	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

const (
	roundWonText      = "Round %d: %s wins %d with a %s\n"
	roundDrawnText    = "Round %d: no unique card, nobody scores\n"
	cardRemovedText   = "  %s loses a %s and has %d token(s) left\n"
	eliminatedText    = "  %s is out!\n"
	withdrawnText     = "  %s takes back a %s\n"
	standingsTitle    = "\nFinal standings:\n"
	standingText      = "%d. %s - %d points, %d token(s)\n"
	abortedText       = "\nGame aborted: %s\n"
	unknownSeatFormat = "seat %d"
)

func SendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

// Narrate writes a readable account of a recorded game
func Narrate(w io.Writer, r *Record) {
	name := func(seat int) string {
		if seat >= 0 && seat < len(r.Seats) {
			return fmt.Sprintf("%s (seat %d)", r.Seats[seat], seat)
		}
		return fmt.Sprintf(unknownSeatFormat, seat)
	}

	for i, step := range r.Steps {
		if step.Phase != protocol.Resolve {
			continue
		}
		after := r.Final
		if i+1 < len(r.Steps) {
			after = r.Steps[i+1].State
		}
		if after == nil || after.LastOutcome == nil {
			continue
		}
		narrateRound(w, step, after, name)
	}

	if r.Error != "" {
		SendText(w, abortedText, r.Error)
		return
	}

	SendText(w, standingsTitle)
	for _, st := range r.Standings {
		SendText(w, standingText, st.Rank, name(st.Seat), st.Score, st.Tokens)
	}
}

func narrateRound(w io.Writer, step Step, after *game.State, name func(int) string) {
	outcome := after.LastOutcome
	before := step.State

	if outcome.Winner == game.NoSeat {
		SendText(w, roundDrawnText, step.Round)
	} else {
		SendText(w, roundWonText, step.Round, name(outcome.Winner), outcome.ScoreDeltas[outcome.Winner], outcome.WinningCard)
	}

	for seat, choice := range before.Choices {
		if choice == protocol.Withdraw && before.Committed[seat] != deck.NoCard {
			SendText(w, withdrawnText, name(seat), before.Committed[seat])
		}
	}

	if outcome.Loser != game.NoSeat {
		loser := after.Players[outcome.Loser]
		SendText(w, cardRemovedText, name(outcome.Loser), outcome.RemovedCard, loser.Tokens)
		if loser.Eliminated {
			SendText(w, eliminatedText, name(outcome.Loser))
		}
	}
}
