// internal/interval/policy.go
package interval

import "time"

// DefaultMultiplier is the growth factor of the non-adaptive policy.
const DefaultMultiplier = 1.5

// Adaptive thresholds.
const (
	shortPhase  = time.Hour     // below: grow by 1.5x
	mediumPhase = 3 * time.Hour // below: 30 minute steps
	mediumStep  = 30 * time.Minute
	longStep    = time.Hour
)

// Policy maps (current interval, total elapsed) to the next probe interval.
// Pure: no clocks, no state.
type Policy struct {
	Adaptive   bool
	Multiplier float64       // non-adaptive growth; <= 0 means DefaultMultiplier
	Max        time.Duration // cap; <= 0 means uncapped
}

// Next returns the interval to wait before the following probe.
func (p Policy) Next(current, elapsed time.Duration) time.Duration {
	var next time.Duration
	if p.Adaptive {
		next = adaptive(current, elapsed)
	} else {
		next = scale(current, p.multiplier())
	}

	if p.Max > 0 && next > p.Max {
		return p.Max
	}
	return next
}

func (p Policy) multiplier() float64 {
	if p.Multiplier <= 0 {
		return DefaultMultiplier
	}
	return p.Multiplier
}

func adaptive(current, elapsed time.Duration) time.Duration {
	switch {
	case elapsed < shortPhase:
		return scale(current, DefaultMultiplier)

	case elapsed < mediumPhase:
		if current < mediumStep {
			return mediumStep
		}
		return current + mediumStep

	default:
		if current < longStep {
			return longStep
		}
		return current + longStep
	}
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
