package engine

import (
	"encoding/json"
	"time"

	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/protocol"
)

// Step is one call to Advance: the state it was applied to and the actions submitted
type Step struct {
	Round   int               `json:"round"`
	Phase   protocol.Phase    `json:"phase"`
	State   *game.State       `json:"state"`
	Actions []protocol.Action `json:"actions"`
}

// Record is everything needed to replay and audit a game.
// Opts.Rules is not serialised; a parsed record plays under the default rules.
type Record struct {
	ID        string             `json:"id"`
	Seed      int64              `json:"seed"`
	Seats     []string           `json:"seats"`
	Opts      game.RemoveOneOpts `json:"opts"`
	Steps     []Step             `json:"steps"`
	Final     *game.State        `json:"final"`
	Standings []game.Standing    `json:"standings"`
	Error     string             `json:"error,omitempty"`
	// Decisions is filled in by seat when the engine profiles decisions
	Decisions []DecisionStats `json:"decisions,omitempty"`
}

// DecisionStats is how long one seat's bot spent deciding over a game
type DecisionStats struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total"`
	Max   time.Duration `json:"max"`
}

func (d *DecisionStats) add(took time.Duration) {
	d.Count++
	d.Total += took
	if took > d.Max {
		d.Max = took
	}
}

// Mean is zero when no decisions were made
func (d DecisionStats) Mean() time.Duration {
	if d.Count == 0 {
		return 0
	}
	return d.Total / time.Duration(d.Count)
}

// Log is the canonical replay log. Two runs with the same seed and bots produce identical bytes.
func (r *Record) Log() ([]byte, error) {
	return json.Marshal(r)
}

func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Completed reports whether the game reached TERMINAL
func (r *Record) Completed() bool {
	return r.Error == "" && r.Final != nil && r.Final.Terminal
}

// Scores returns the final score of each seat
func (r *Record) Scores() []int {
	if r.Final == nil {
		return nil
	}
	scores := make([]int, len(r.Final.Players))
	for seat, p := range r.Final.Players {
		scores[seat] = p.Score
	}
	return scores
}

// Ranks returns the final rank of each seat
func (r *Record) Ranks() []int {
	if r.Final == nil {
		return nil
	}
	return r.Final.Ranks()
}

// Rounds is the number of rounds that were resolved
func (r *Record) Rounds() int {
	n := 0
	for _, step := range r.Steps {
		if step.Phase == protocol.Resolve {
			n++
		}
	}
	return n
}
