// Package instructions turns a raw routing response into turn-by-turn
// directions.
package instructions

import (
	"fmt"
	"strings"

	"golang.org/x/text/message"

	"route-finder/internal/i18n"
	"route-finder/internal/route"
)

// UnnamedRoad is the placeholder some routing data uses instead of an
// empty name.
const UnnamedRoad = "Unnamed road"

var defaultPrinter = i18n.English()

type Synthesizer struct {
	p *message.Printer
}

// New returns a synthesizer writing through p. A nil printer writes English.
func New(p *message.Printer) *Synthesizer {
	if p == nil {
		p = defaultPrinter
	}
	return &Synthesizer{p: p}
}

// Synthesize selects the first route candidate and builds one display step
// per raw step, legs in order and steps in order within each leg.
func (s *Synthesizer) Synthesize(resp *route.Response) (*route.Directions, error) {
	if resp == nil || len(resp.Routes) == 0 {
		return nil, fmt.Errorf("synthesize: %w", route.ErrNoRouteFound)
	}
	best := resp.Routes[0]

	n := 0
	for _, leg := range best.Legs {
		n += len(leg.Steps)
	}
	steps := make([]route.DisplayStep, 0, n)
	for _, leg := range best.Legs {
		for _, st := range leg.Steps {
			steps = append(steps, s.Display(st))
		}
	}

	return &route.Directions{
		Steps: steps,
		Summary: route.Summary{
			TotalDistance: nonNegative(best.Distance),
			TotalDuration: nonNegative(best.Duration),
		},
		Geometry: best.Geometry,
	}, nil
}

// Display enriches one raw step.
func (s *Synthesizer) Display(st route.Step) route.DisplayStep {
	st.Distance = nonNegative(st.Distance)
	st.Duration = nonNegative(st.Duration)
	return route.DisplayStep{
		Step:              st,
		Instruction:       s.Instruction(st),
		FormattedDistance: formatDistance(s.p, st.Distance),
		FormattedDuration: formatDuration(s.p, st.Duration),
	}
}

// Instruction renders the natural-language sentence for a step.
func (s *Synthesizer) Instruction(st route.Step) string {
	p := s.p
	kind := st.Maneuver.Kind()
	modifier := strings.TrimSpace(st.Maneuver.Modifier)
	dir := p.Sprintf(direction(st.Maneuver.BearingAfter))
	road, named := s.roadName(st)

	var text string
	switch kind {
	case route.KindDepart:
		text = p.Sprintf("Start by heading %s on %s", dir, road)
	case route.KindArrive:
		return p.Sprintf("You have arrived at your destination")
	case route.KindTurn:
		text = p.Sprintf("Turn %s onto %s", p.Sprintf(modifier), road)
	case route.KindContinue:
		if modifier != "" {
			text = p.Sprintf("Continue %s on %s", p.Sprintf(modifier), road)
		} else {
			text = p.Sprintf("Continue on %s", road)
		}
	case route.KindNewName:
		text = p.Sprintf("Continue onto %s", road)
	case route.KindRoundabout:
		text = p.Sprintf("At the roundabout, take the exit onto %s", road)
	case route.KindBusStop:
		text = p.Sprintf("Wait at the bus stop")
	default:
		if named {
			text = p.Sprintf("Follow %s", road)
		} else {
			text = p.Sprintf("Continue %s", dir)
		}
	}

	if st.Distance > 0 {
		text = p.Sprintf("%s for %s", text, formatDistance(p, st.Distance))
	}
	return text
}

// roadName returns the step's road or, for unnamed roads, a phrase built
// from the exit bearing. The bool reports whether the road had a name.
func (s *Synthesizer) roadName(st route.Step) (string, bool) {
	name := strings.TrimSpace(st.Name)
	if name != "" && !strings.EqualFold(name, UnnamedRoad) {
		return name, true
	}
	return s.p.Sprintf("the road heading %s", s.p.Sprintf(direction(st.Maneuver.BearingAfter))), false
}

// Synthesize runs an English synthesizer.
func Synthesize(resp *route.Response) (*route.Directions, error) {
	return New(nil).Synthesize(resp)
}

// Instruction renders an English instruction.
func Instruction(st route.Step) string {
	return New(nil).Instruction(st)
}
