package geo_test

import (
	"math"
	"testing"

	"geo-attendance/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	t.Parallel()

	office := geo.Point{Lat: 12.9716, Lon: 77.5946}

	tests := []struct {
		name    string
		a, b    geo.Point
		want    float64
		epsilon float64
	}{
		{name: "same point", a: office, b: office, want: 0, epsilon: 1e-9},
		{name: "nearby point in bangalore", a: office, b: geo.Point{Lat: 12.98, Lon: 77.60}, want: 1102, epsilon: 10},
		{name: "one degree of latitude", a: geo.Point{Lat: 0, Lon: 0}, b: geo.Point{Lat: 1, Lon: 0}, want: 111195, epsilon: 1},
		{name: "antipodes", a: geo.Point{Lat: 0, Lon: 0}, b: geo.Point{Lat: 0, Lon: 180}, want: math.Pi * geo.EarthRadiusMeters, epsilon: 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := geo.DistanceMeters(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.epsilon)
		})
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	t.Parallel()

	a := geo.Point{Lat: 48.8566, Lon: 2.3522}
	b := geo.Point{Lat: 51.5074, Lon: -0.1278}

	assert.InDelta(t, geo.DistanceMeters(a, b), geo.DistanceMeters(b, a), 1e-9)
}

func TestWithin(t *testing.T) {
	t.Parallel()

	center := geo.Point{Lat: 12.9716, Lon: 77.5946}

	inside, d := geo.Within(center, center, 100)
	assert.True(t, inside)
	assert.Zero(t, d)

	inside, d = geo.Within(center, geo.Point{Lat: 12.98, Lon: 77.60}, 100)
	assert.False(t, inside)
	assert.Greater(t, d, 900.0)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, geo.Validate(geo.Point{Lat: 90, Lon: -180}))
	require.NoError(t, geo.Validate(geo.Point{Lat: -90, Lon: 180}))

	require.ErrorIs(t, geo.Validate(geo.Point{Lat: 91, Lon: 0}), geo.ErrInvalidLatitude)
	require.ErrorIs(t, geo.Validate(geo.Point{Lat: math.NaN(), Lon: 0}), geo.ErrInvalidLatitude)
	require.ErrorIs(t, geo.Validate(geo.Point{Lat: 0, Lon: -180.5}), geo.ErrInvalidLongitude)
	require.ErrorIs(t, geo.Validate(geo.Point{Lat: 0, Lon: math.Inf(1)}), geo.ErrInvalidLongitude)
}
