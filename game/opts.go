package game

import "github.com/minaorangina/removeone/deck"

const (
	minPlayers = 2
	maxPlayers = 8
)

// RemoveOneOpts describes the table a game is played on
type RemoveOneOpts struct {
	Players     int   `json:"players"`
	Composition []int `json:"composition"`
	HandSize    int   `json:"handSize"`
	Tokens      int   `json:"tokens"`
	// MaxRounds caps the game length. Zero means no cap.
	MaxRounds int   `json:"maxRounds"`
	Rules     Rules `json:"-"`
}

// DefaultOpts is a four player table with ranks 1-8, four copies each
func DefaultOpts() RemoveOneOpts {
	return RemoveOneOpts{
		Players:     4,
		Composition: deck.Standard(8, 4),
		HandSize:    4,
		Tokens:      2,
		MaxRounds:   64,
	}
}

// Validate checks the options describe a playable game
func (o RemoveOneOpts) Validate() error {
	if o.Players < minPlayers || o.Players > maxPlayers {
		return &ConfigurationError{Field: "players", Reason: "must be between 2 and 8"}
	}
	if o.HandSize <= 0 {
		return &ConfigurationError{Field: "hand size", Reason: "must be positive"}
	}
	if o.Tokens <= 0 {
		return &ConfigurationError{Field: "tokens", Reason: "must be positive"}
	}
	if o.MaxRounds < 0 {
		return &ConfigurationError{Field: "max rounds", Reason: "must not be negative"}
	}
	if len(o.Composition) == 0 {
		return &ConfigurationError{Field: "deck", Reason: "must not be empty"}
	}
	for _, rank := range o.Composition {
		if rank <= 0 {
			return &ConfigurationError{Field: "deck", Reason: "ranks must be positive"}
		}
	}
	if len(o.Composition) < o.Players*o.HandSize {
		return &ConfigurationError{Field: "deck", Reason: "has too few cards to deal every hand"}
	}
	return nil
}

// RuleSet returns the configured rules, falling back to LowestUnique
func (o RemoveOneOpts) RuleSet() Rules {
	if o.Rules == nil {
		return LowestUnique{}
	}
	return o.Rules
}

func (o RemoveOneOpts) clone() RemoveOneOpts {
	out := o
	out.Composition = append([]int(nil), o.Composition...)
	return out
}
