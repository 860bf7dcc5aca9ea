package tournament

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
)

func (t *Tournament) runRoundRobin(ctx context.Context, agg *aggregator) error {
	seatings := roundRobin(len(t.opts.Entrants), t.opts.Seats, t.opts.GamesPerMatchup)
	t.seedSchedule(len(seatings))
	return t.play(ctx, seatings, agg)
}

// roundRobin seats every combination of size seats, games times each, rotating the seating
// one place per game
func roundRobin(entrants, seats, games int) [][]int {
	out := [][]int{}
	for _, combo := range combinations(entrants, seats) {
		for g := 0; g < games; g++ {
			out = append(out, rotate(combo, g%seats))
		}
	}
	return out
}

// combinations lists every k-subset of 0..n-1 in lexicographic order
func combinations(n, k int) [][]int {
	out := [][]int{}
	if k <= 0 || k > n {
		return out
	}
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		out = append(out, append([]int{}, combo...))

		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}

func rotate(seating []int, by int) []int {
	out := make([]int, len(seating))
	for i := range seating {
		out[i] = seating[(i+by)%len(seating)]
	}
	return out
}

// runSingleElimination plays a knockout bracket. The best seeds get byes when the field is not a
// power of two, and every round pairs the best remaining seed with the worst.
func (t *Tournament) runSingleElimination(ctx context.Context, agg *aggregator) error {
	n := len(t.opts.Entrants)
	games := t.opts.GamesPerMatchup
	t.seedSchedule((n - 1) * games)

	alive := make([]int, n)
	for i := range alive {
		alive[i] = i
	}
	byes := bracketSize(n) - n

	for round := 1; len(alive) > 1; round++ {
		agg.round = round

		advancing := []int{}
		contenders := alive
		if round == 1 {
			advancing = append(advancing, alive[:byes]...)
			contenders = alive[byes:]
		}

		matches := [][2]int{}
		for i := 0; i < len(contenders)/2; i++ {
			matches = append(matches, [2]int{contenders[i], contenders[len(contenders)-1-i]})
		}

		seatings := [][]int{}
		for _, m := range matches {
			for g := 0; g < games; g++ {
				if g%2 == 0 {
					seatings = append(seatings, []int{m[0], m[1]})
				} else {
					seatings = append(seatings, []int{m[1], m[0]})
				}
			}
		}

		start := len(agg.summary.Games)
		if err := t.play(ctx, seatings, agg); err != nil {
			return err
		}
		played := agg.summary.Games[start:]

		for i, m := range matches {
			winner := t.matchWinner(m, played[i*games:(i+1)*games])
			t.log.WithFields(logrus.Fields{
				"round":  round,
				"match":  t.opts.Entrants[m[0]].Name + " v " + t.opts.Entrants[m[1]].Name,
				"winner": t.opts.Entrants[winner].Name,
			}).Info("match decided")
			advancing = append(advancing, winner)
		}

		sort.Ints(advancing)
		alive = advancing
	}

	agg.summary.Champion = t.opts.Entrants[alive[0]].Name
	return nil
}

// matchWinner decides a match on wins, then rating, then seed. A forfeit is a win for the other side.
func (t *Tournament) matchWinner(m [2]int, games []GameResult) int {
	a, b := t.opts.Entrants[m[0]].Name, t.opts.Entrants[m[1]].Name

	var aWins, bWins int
	for _, g := range games {
		switch {
		case g.Winner() == a || g.Forfeit == b:
			aWins++
		case g.Winner() == b || g.Forfeit == a:
			bWins++
		}
	}

	switch {
	case aWins > bWins:
		return m[0]
	case bWins > aWins:
		return m[1]
	}

	ra, rb := t.table.Get(a).Value, t.table.Get(b).Value
	switch {
	case ra > rb:
		return m[0]
	case rb > ra:
		return m[1]
	}

	if m[0] < m[1] {
		return m[0]
	}
	return m[1]
}

func bracketSize(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	return size
}
