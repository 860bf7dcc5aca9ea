package protocol

import "fmt"

// Phase represents one step of the per-round state machine
type Phase int

const (
	Select Phase = iota
	Reveal
	Choose
	Resolve
	Terminal
)

var PhaseNames = map[Phase]string{
	Select:   "SELECT",
	Reveal:   "REVEAL",
	Choose:   "CHOOSE",
	Resolve:  "RESOLVE",
	Terminal: "TERMINAL",
}

var NameToPhase = map[string]Phase{
	"SELECT":   Select,
	"REVEAL":   Reveal,
	"CHOOSE":   Choose,
	"RESOLVE":  Resolve,
	"TERMINAL": Terminal,
}

func (p Phase) String() string {
	if name, ok := PhaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Next returns the phase that follows p within a round.
// RESOLVE loops back to SELECT; the caller decides whether to exit to TERMINAL instead.
func (p Phase) Next() Phase {
	switch p {
	case Select:
		return Reveal
	case Reveal:
		return Choose
	case Choose:
		return Resolve
	case Resolve:
		return Select
	}
	return Terminal
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	phase, ok := NameToPhase[string(text)]
	if !ok {
		return fmt.Errorf("unknown phase %q", text)
	}
	*p = phase
	return nil
}

// ActionKind tags the variant carried by an Action
type ActionKind int

const (
	Pass ActionKind = iota
	SelectCard
	ChooseOption
)

var ActionKindNames = map[ActionKind]string{
	Pass:         "pass",
	SelectCard:   "select",
	ChooseOption: "choose",
}

var NameToActionKind = map[string]ActionKind{
	"pass":   Pass,
	"select": SelectCard,
	"choose": ChooseOption,
}

func (k ActionKind) String() string {
	if name, ok := ActionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	kind, ok := NameToActionKind[string(text)]
	if !ok {
		return fmt.Errorf("unknown action kind %q", text)
	}
	*k = kind
	return nil
}

// Option is a secondary choice offered during CHOOSE
type Option int

const (
	Stand Option = iota
	Withdraw
)

var OptionNames = map[Option]string{
	Stand:    "stand",
	Withdraw: "withdraw",
}

func (o Option) String() string {
	if name, ok := OptionNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Option(%d)", int(o))
}

// Action is a player's choice for the current phase.
// Index is a hand index for SelectCard and an option index for ChooseOption.
type Action struct {
	Seat  int        `json:"seat"`
	Kind  ActionKind `json:"kind"`
	Index int        `json:"index"`
}

func SelectAction(seat, cardIdx int) Action {
	return Action{Seat: seat, Kind: SelectCard, Index: cardIdx}
}

func ChooseAction(seat, optionIdx int) Action {
	return Action{Seat: seat, Kind: ChooseOption, Index: optionIdx}
}

func PassAction(seat int) Action {
	return Action{Seat: seat, Kind: Pass}
}

func (a Action) String() string {
	if a.Kind == Pass {
		return fmt.Sprintf("seat %d pass", a.Seat)
	}
	return fmt.Sprintf("seat %d %s %d", a.Seat, a.Kind, a.Index)
}
