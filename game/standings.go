package game

import "sort"

// Standing is a seat's placing at the end of (or during) a game
type Standing struct {
	Seat         int  `json:"seat"`
	Rank         int  `json:"rank"`
	Score        int  `json:"score"`
	Tokens       int  `json:"tokens"`
	Eliminated   bool `json:"eliminated"`
	LastWinRound int  `json:"lastWinRound"`
}

// Standings orders the seats best first. Surviving seats beat eliminated ones, then score,
// tokens and the most recent round won decide; eliminated seats are ordered by how long they
// lasted. Equal seats share a rank.
func (s *State) Standings() []Standing {
	eliminatedAt := map[int]int{}
	for i, seat := range s.EliminationOrder {
		eliminatedAt[seat] = i
	}

	standings := make([]Standing, len(s.Players))
	for i, p := range s.Players {
		standings[i] = Standing{
			Seat:         p.Seat,
			Score:        p.Score,
			Tokens:       p.Tokens,
			Eliminated:   p.Eliminated,
			LastWinRound: p.LastWinRound,
		}
	}

	better := func(a, b Standing) bool {
		if a.Eliminated != b.Eliminated {
			return !a.Eliminated
		}
		if a.Eliminated {
			return eliminatedAt[a.Seat] > eliminatedAt[b.Seat]
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Tokens != b.Tokens {
			return a.Tokens > b.Tokens
		}
		return a.LastWinRound > b.LastWinRound
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return better(standings[i], standings[j])
	})

	for i := range standings {
		if i > 0 && !better(standings[i-1], standings[i]) {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}

	return standings
}

// Ranks returns each seat's rank, indexed by seat
func (s *State) Ranks() []int {
	ranks := make([]int, len(s.Players))
	for _, st := range s.Standings() {
		ranks[st.Seat] = st.Rank
	}
	return ranks
}
