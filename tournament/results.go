package tournament

import (
	"sort"
	"time"

	"github.com/minaorangina/removeone/engine"
	"github.com/minaorangina/removeone/rating"
)

// GameResult is one scheduled game as the aggregator saw it.
// Participants, Scores, Ranks and RatingDeltas are indexed by seat.
type GameResult struct {
	Index int `json:"index"`
	// Round is the knockout round, counting from 1. Round robin games leave it at 0.
	Round            int       `json:"round,omitempty"`
	GameID           string    `json:"gameId"`
	Seed             int64     `json:"seed"`
	Participants     []string  `json:"participants"`
	Scores           []int     `json:"scores"`
	Ranks            []int     `json:"ranks"`
	EliminationOrder []int     `json:"eliminationOrder"`
	RatingDeltas     []float64 `json:"ratingDeltas"`
	Err              string    `json:"error,omitempty"`
	// Forfeit names the participant whose invalid action ended the game
	Forfeit string `json:"forfeit,omitempty"`
	// Decisions is set by seat when decisions are profiled
	Decisions []engine.DecisionStats `json:"decisions,omitempty"`
}

// Winner is the sole first place, or "" if first place was shared or the game failed
func (r GameResult) Winner() string {
	if r.Err != "" {
		return ""
	}
	winner := ""
	for seat, rank := range r.Ranks {
		if rank != 1 {
			continue
		}
		if winner != "" {
			return ""
		}
		winner = r.Participants[seat]
	}
	return winner
}

type EntrantStats struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Points  int     `json:"points"`
	WinRate float64 `json:"winRate"`
	// Decision timings cover every profiled game, including failed ones
	Decisions    int           `json:"decisions,omitempty"`
	MeanDecision time.Duration `json:"meanDecision,omitempty"`
	MaxDecision  time.Duration `json:"maxDecision,omitempty"`
}

// HeadToHead counts the games in which A placed above B, B above A, or the two tied
type HeadToHead struct {
	A     string `json:"a"`
	B     string `json:"b"`
	AWins int    `json:"aWins"`
	BWins int    `json:"bWins"`
	Draws int    `json:"draws"`
}

type Summary struct {
	ID         string          `json:"id"`
	Format     Format          `json:"format"`
	Seed       int64           `json:"seed"`
	Games      []GameResult    `json:"games"`
	Ratings    []rating.Rating `json:"ratings"`
	Entrants   []EntrantStats  `json:"entrants"`
	HeadToHead []HeadToHead    `json:"headToHead"`
	Errors     int             `json:"errors"`
	Champion   string          `json:"champion"`
}

// tally folds completed games into per-entrant and pairwise counts
type tally struct {
	stats map[string]*EntrantStats
	pairs map[[2]string]*HeadToHead
	// thinking is total decision time by entrant
	thinking map[string]time.Duration
}

func newTally(names []string) *tally {
	t := &tally{
		stats:    map[string]*EntrantStats{},
		pairs:    map[[2]string]*HeadToHead{},
		thinking: map[string]time.Duration{},
	}
	for _, name := range names {
		t.stats[name] = &EntrantStats{Name: name}
	}
	return t
}

func (t *tally) add(r GameResult) {
	for seat, d := range r.Decisions {
		s := t.stats[r.Participants[seat]]
		s.Decisions += d.Count
		t.thinking[s.Name] += d.Total
		if d.Max > s.MaxDecision {
			s.MaxDecision = d.Max
		}
	}

	if r.Err != "" {
		return
	}
	winner := r.Winner()
	for seat, name := range r.Participants {
		s := t.stats[name]
		s.Games++
		s.Points += r.Scores[seat]
		if name == winner {
			s.Wins++
		}
	}

	for i := range r.Participants {
		for j := i + 1; j < len(r.Participants); j++ {
			a, b, ra, rb := r.Participants[i], r.Participants[j], r.Ranks[i], r.Ranks[j]
			if a > b {
				a, b, ra, rb = b, a, rb, ra
			}
			key := [2]string{a, b}
			h, ok := t.pairs[key]
			if !ok {
				h = &HeadToHead{A: a, B: b}
				t.pairs[key] = h
			}
			switch {
			case ra < rb:
				h.AWins++
			case rb < ra:
				h.BWins++
			default:
				h.Draws++
			}
		}
	}
}

func (t *tally) entrants(table *rating.Table) []EntrantStats {
	out := []EntrantStats{}
	for _, s := range t.stats {
		e := *s
		e.Rating = table.Get(e.Name).Value
		if e.Games > 0 {
			e.WinRate = float64(e.Wins) / float64(e.Games)
		}
		if e.Decisions > 0 {
			e.MeanDecision = t.thinking[e.Name] / time.Duration(e.Decisions)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (t *tally) headToHead() []HeadToHead {
	out := []HeadToHead{}
	for _, h := range t.pairs {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
