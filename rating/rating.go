package rating

import (
	"errors"
	"math"
	"sort"
	"sync"
)

var ErrMismatchedRanks = errors.New("names and ranks differ in length")

// Rating is one entrant's current standing
type Rating struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Games int     `json:"games"`
}

// Table keeps ELO ratings for a field of entrants. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	k       float64
	initial float64
	ratings map[string]*Rating
}

func NewTable(k, initial float64) *Table {
	return &Table{
		k:       k,
		initial: initial,
		ratings: map[string]*Rating{},
	}
}

// Expected is the probability that a player rated a beats one rated b
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// Get returns name's rating, or a fresh one if name has not played
func (t *Table) Get(name string) Rating {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.get(name)
}

func (t *Table) get(name string) Rating {
	if r, ok := t.ratings[name]; ok {
		return *r
	}
	return Rating{Name: name, Value: t.initial}
}

// Register adds name to the table without playing a game
func (t *Table) Register(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.ratings[name]; !ok {
		t.ratings[name] = &Rating{Name: name, Value: t.initial}
	}
}

// Apply records one finished game. ranks[i] is the final place of names[i], 1 being best;
// equal ranks are ties. Every pair is scored as a heads-up result against the ratings from
// before the game, scaled by K/(n-1), so the deltas always sum to zero.
func (t *Table) Apply(names []string, ranks []int) ([]float64, error) {
	if len(names) != len(ranks) {
		return nil, ErrMismatchedRanks
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(names)
	deltas := make([]float64, n)
	if n < 2 {
		return deltas, nil
	}

	before := make([]float64, n)
	for i, name := range names {
		before[i] = t.get(name).Value
	}

	scale := t.k / float64(n-1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var actual float64
			switch {
			case ranks[i] < ranks[j]:
				actual = 1
			case ranks[i] == ranks[j]:
				actual = 0.5
			}
			d := scale * (actual - Expected(before[i], before[j]))
			deltas[i] += d
			deltas[j] -= d
		}
	}

	for i, name := range names {
		r := t.get(name)
		r.Value += deltas[i]
		r.Games++
		t.ratings[name] = &r
	}
	return deltas, nil
}

// Snapshot returns every rating, best first, ties broken by name
func (t *Table) Snapshot() []Rating {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Rating, 0, len(t.ratings))
	for _, r := range t.ratings {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}
