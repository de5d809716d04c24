package routing

import "route-finder/internal/route"

// Average speeds in meters per second.
var speeds = map[route.Mode]float64{
	route.ModeWalking: 1.4,
	route.ModeCycling: 4.2,
	route.ModeDriving: 13.9,
	route.ModeBus:     9.3,
}

const (
	// trafficFactor pads driving estimates for average traffic.
	trafficFactor = 1.2

	// A bus stop is assumed after a step longer than busStopStepMin once
	// the distance since the last stop exceeds busStopSpacing.
	busStopStepMin = 400.0
	busStopSpacing = 500.0
	busStopDwell   = 20.0 // seconds
)

// Speed returns the average speed assumed for a mode.
func Speed(m route.Mode) float64 { return speeds[m] }

// Adjust rescales OSRM durations in place for the requested mode. Driving
// gets a traffic allowance; buses are slowed to bus speed and get stop
// dwell steps. Walking and cycling profiles are used as returned.
func Adjust(resp *route.Response, mode route.Mode) {
	if resp == nil {
		return
	}
	switch mode {
	case route.ModeDriving:
		scale(resp, trafficFactor)
	case route.ModeBus:
		scale(resp, speeds[route.ModeDriving]/speeds[route.ModeBus])
		insertBusStops(resp)
	}
}

func scale(resp *route.Response, f float64) {
	for i := range resp.Routes {
		c := &resp.Routes[i]
		c.Duration *= f
		for j := range c.Legs {
			leg := &c.Legs[j]
			leg.Duration *= f
			for k := range leg.Steps {
				leg.Steps[k].Duration *= f
			}
		}
	}
}

// insertBusStops adds a zero-distance bus_stop step after long steps. The
// dwell time is added to the leg and candidate totals.
func insertBusStops(resp *route.Response) {
	for i := range resp.Routes {
		c := &resp.Routes[i]
		for j := range c.Legs {
			leg := &c.Legs[j]
			steps := make([]route.Step, 0, len(leg.Steps))
			run := 0.0
			for _, st := range leg.Steps {
				steps = append(steps, st)
				run += st.Distance
				if st.Distance > busStopStepMin && run > busStopSpacing {
					steps = append(steps, busStop(st))
					leg.Duration += busStopDwell
					c.Duration += busStopDwell
					run = 0
				}
			}
			leg.Steps = steps
		}
	}
}

func busStop(after route.Step) route.Step {
	return route.Step{
		Duration: busStopDwell,
		Name:     after.Name,
		Mode:     string(route.ModeBus),
		Maneuver: route.Maneuver{
			Type:         string(route.KindBusStop),
			BearingAfter: after.Maneuver.BearingAfter,
			Location:     after.Maneuver.Location,
		},
	}
}
