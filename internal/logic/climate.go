package logic

import (
	"errors"
	"math"
)

// errInvalidReading marks a measurement that completed but returned NaN.
var errInvalidReading = errors.New("climate: invalid reading")

// ClimateStats counts climate sample attempts for the status page.
type ClimateStats struct {
	Attempts     int
	Failures     int
	LastSampleAt Millis
	LastErr      error
}

// ClimateCache owns the last known good climate reading and throttles how
// often the sensor is asked for a new one.
type ClimateCache struct {
	sensor       ClimateSensor
	period       Millis
	reading      Climate
	lastSampleAt Millis
	stats        ClimateStats
}

// NewClimateCache creates a cache that samples sensor at most once per
// period. The first sample is attempted one full period after start.
func NewClimateCache(sensor ClimateSensor, period, start Millis) *ClimateCache {
	return &ClimateCache{
		sensor:       sensor,
		period:       period,
		lastSampleAt: start,
		stats:        ClimateStats{LastSampleAt: start},
	}
}

// MaybeUpdate attempts a sensor read when the period has elapsed and returns
// the cached reading either way. The attempt time is recorded whether or not
// the read succeeds; only a reading with both values well defined replaces
// the cache, so a failing sensor never blanks the last good value.
func (c *ClimateCache) MaybeUpdate(now Millis) Climate {
	if !Elapsed(now, c.lastSampleAt, c.period) {
		return c.reading
	}
	c.lastSampleAt = now
	c.stats.Attempts++
	c.stats.LastSampleAt = now

	t, h, err := c.sensor.ReadClimate()
	if err == nil && (!finite(t) || !finite(h)) {
		err = errInvalidReading
	}
	c.stats.LastErr = err
	if err != nil {
		c.stats.Failures++
		return c.reading
	}

	c.reading = Climate{Temperature: t, Humidity: h, Valid: true}
	return c.reading
}

// Reading returns the cached reading without sampling.
func (c *ClimateCache) Reading() Climate { return c.reading }

// LastSampleAt returns the timestamp of the most recent attempt.
func (c *ClimateCache) LastSampleAt() Millis { return c.lastSampleAt }

// Stats returns a copy of the attempt counters.
func (c *ClimateCache) Stats() ClimateStats { return c.stats }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
