package protocol

import "fmt"

// PacType is a unit's rock-paper-scissors form.
type PacType uint8

const (
	Rock PacType = iota
	Paper
	Scissors
	Dead
)

var pacTypeNames = [...]string{"ROCK", "PAPER", "SCISSORS", "DEAD"}

func (t PacType) String() string {
	if int(t) < len(pacTypeNames) {
		return pacTypeNames[t]
	}
	return "UNKNOWN"
}

// ParsePacType maps a wire type tag to a PacType.
func ParsePacType(s string) (PacType, error) {
	for i, name := range pacTypeNames {
		if name == s {
			return PacType(i), nil
		}
	}
	return 0, fmt.Errorf("protocol: unknown pac type %q", s)
}

// Dominator returns the form that beats t. Dead units have none and return Dead.
func (t PacType) Dominator() PacType {
	switch t {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	case Scissors:
		return Rock
	}
	return Dead
}

// Beats reports whether t wins a collision against o.
func (t PacType) Beats(o PacType) bool {
	return t != Dead && o != Dead && o.Dominator() == t
}
