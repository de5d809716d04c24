package instructions

import (
	"math"
	"strconv"

	"golang.org/x/text/message"
)

var cardinals = [8]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

// CardinalDirection maps a compass bearing to one of eight words. Sectors
// are 45 degrees wide and centered on the words; ties round up.
func CardinalDirection(bearing float64) string {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return "forward"
	}
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	idx := int(math.Floor(b/45+0.5)) % 8
	return cardinals[idx]
}

// direction is CardinalDirection for an optional bearing; the routing API
// omits bearings on some steps.
func direction(bearing *float64) string {
	if bearing == nil {
		return "forward"
	}
	return CardinalDirection(*bearing)
}

// FormatDistance renders whole meters below a kilometer and kilometers with
// two decimals from there on.
func FormatDistance(meters float64) string { return formatDistance(defaultPrinter, meters) }

// FormatDuration renders seconds as minutes and seconds.
func FormatDuration(seconds float64) string { return formatDuration(defaultPrinter, seconds) }

func formatDistance(p *message.Printer, meters float64) string {
	meters = nonNegative(meters)
	if meters < 1000 {
		return p.Sprintf("%s meters", strconv.FormatInt(int64(math.Floor(meters+0.5)), 10))
	}
	return p.Sprintf("%s kilometers", strconv.FormatFloat(meters/1000, 'f', 2, 64))
}

func formatDuration(p *message.Printer, seconds float64) string {
	total := int64(math.Floor(nonNegative(seconds)))
	minutes := total / 60
	rest := total % 60

	switch {
	case minutes == 0:
		return unit(p, rest, "%s second", "%s seconds")
	case rest == 0:
		return unit(p, minutes, "%s minute", "%s minutes")
	default:
		return p.Sprintf("%s and %s",
			unit(p, minutes, "%s minute", "%s minutes"),
			unit(p, rest, "%s second", "%s seconds"))
	}
}

func unit(p *message.Printer, n int64, one, many string) string {
	key := many
	if n == 1 {
		key = one
	}
	return p.Sprintf(key, strconv.FormatInt(n, 10))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
