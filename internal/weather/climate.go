package weather

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// DefaultClimateLatency mimics the round trip of a real climate data service.
const DefaultClimateLatency = 1500 * time.Millisecond

var syntheticSummaries = []string{
	"Temperatures show slight warming trend compared to historical averages.",
	"Precipitation patterns indicate seasonal shifts with earlier spring rainfall.",
	"Climate indicators suggest typical seasonal patterns with minor variations.",
}

// Rand is the random source used by the synthetic generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// SyntheticClimate is a placeholder climate source. It does not measure
// anything: every summary it returns is pseudo-random and flagged Synthetic.
type SyntheticClimate struct {
	rnd     Rand
	latency time.Duration
}

// NewSyntheticClimate creates a generator. A nil rnd uses the process-wide
// source; latency <= 0 disables the simulated delay.
func NewSyntheticClimate(rnd Rand, latency time.Duration) *SyntheticClimate {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &SyntheticClimate{rnd: rnd, latency: latency}
}

// Summary returns a generated summary after the simulated latency.
func (s *SyntheticClimate) Summary(ctx context.Context, _ Coordinates) (ClimateSummary, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ClimateSummary{}, fmt.Errorf("%w: %v", ErrDataUnavailable, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return ClimateSummary{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	return ClimateSummary{
		AvgTemperature:       between(s.rnd.Float64(), 20, 25),
		TemperatureTrend:     between(s.rnd.Float64(), -0.5, 1.5),
		TemperatureChangePct: 30 + s.rnd.IntN(70),
		AvgPrecipitation:     between(s.rnd.Float64(), 20, 120),
		PrecipitationTrend:   between(s.rnd.Float64(), -10, 10),
		PrecipitationPct:     20 + s.rnd.IntN(80),
		Summary:              syntheticSummaries[s.rnd.IntN(len(syntheticSummaries))],
		Synthetic:            true,
	}, nil
}

// between scales f in [0,1) onto [lo,hi). Rounding can land f values just
// under 1 on hi, so the result is clamped below it.
func between(f, lo, hi float64) float64 {
	v := lo + f*(hi-lo)
	if v >= hi {
		return math.Nextafter(hi, lo)
	}
	return v
}
