package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMiles(t *testing.T) {
	// Union Sq to Times Sq is about 1.6 miles.
	d := HaversineMiles(40.7359, -73.9906, 40.7580, -73.9855)
	assert.InDelta(t, 1.56, d, 0.1)

	assert.Zero(t, HaversineMiles(40.7, -74.0, 40.7, -74.0))
}

func TestHaversineMeters(t *testing.T) {
	miles := HaversineMiles(40.7359, -73.9906, 40.7580, -73.9855)
	assert.InDelta(t, miles*MetersPerMile, HaversineMeters(40.7359, -73.9906, 40.7580, -73.9855), 1e-6)
}
