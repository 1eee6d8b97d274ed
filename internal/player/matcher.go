package player

import (
	"math"

	"github.com/upskilleo/learning-engine/internal/catalog"
)

// NoTrigger is the sentinel for "no key moment has fired yet".
const NoTrigger = -1

// DefaultTolerance is the match window around a key moment, in seconds. The
// polling loop samples well inside this window, so a moment cannot slip
// through between ticks.
const DefaultTolerance = 1.0

// FindTriggeredMoment returns the key moment whose trigger time falls within
// tolerance of currentTime, excluding the moment that fired last
// (lastTriggered, or NoTrigger). When several moments fall inside the window
// the one with the smallest trigger time wins. Pure function; callable at any
// polling rate.
func FindTriggeredMoment(moments []catalog.KeyMoment, currentTime, lastTriggered, tolerance float64) (catalog.KeyMoment, bool) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	var best catalog.KeyMoment
	found := false
	for _, km := range moments {
		if km.TimeInSeconds == lastTriggered {
			continue
		}
		if math.Abs(km.TimeInSeconds-currentTime) >= tolerance {
			continue
		}
		if !found || km.TimeInSeconds < best.TimeInSeconds {
			best = km
			found = true
		}
	}
	return best, found
}
