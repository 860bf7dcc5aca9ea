package tournament

import "fmt"

type Format int

const (
	RoundRobin Format = iota
	SingleElimination
)

var FormatNames = map[Format]string{
	RoundRobin:        "round-robin",
	SingleElimination: "single-elimination",
}

var NameToFormat = map[string]Format{
	"round-robin":        RoundRobin,
	"single-elimination": SingleElimination,
}

func (f Format) String() string {
	if name, ok := FormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) MarshalText() ([]byte, error) {
	name, ok := FormatNames[f]
	if !ok {
		return nil, fmt.Errorf("unknown format %d", int(f))
	}
	return []byte(name), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	format, ok := NameToFormat[string(text)]
	if !ok {
		return fmt.Errorf("unknown format %q", text)
	}
	*f = format
	return nil
}
