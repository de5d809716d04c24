package route

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeWalking Mode = "walking"
	ModeCycling Mode = "cycling"
	ModeDriving Mode = "driving"
	ModeBus     Mode = "bus"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWalking, ModeCycling, ModeDriving, ModeBus:
		return m, nil
	default:
		return "", fmt.Errorf("unknown transport mode %q", s)
	}
}

// Profile is the routing profile requested for the mode. Buses are routed
// on the road network and adjusted afterwards.
func (m Mode) Profile() string {
	if m == ModeBus {
		return string(ModeDriving)
	}
	return string(m)
}

// Kind is the maneuver vocabulary the instruction table understands.
type Kind string

const (
	KindDepart       Kind = "depart"
	KindArrive       Kind = "arrive"
	KindTurn         Kind = "turn"
	KindContinue     Kind = "continue"
	KindNewName      Kind = "new name"
	KindRoundabout   Kind = "roundabout"
	KindBusStop      Kind = "bus_stop"
	KindUnrecognized Kind = ""
)

func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDepart, KindArrive, KindTurn, KindContinue, KindNewName, KindRoundabout, KindBusStop:
		return k
	case "new-name":
		return KindNewName
	default:
		return KindUnrecognized
	}
}
