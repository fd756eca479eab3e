package airport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gilby125/travel-index-api/pkg/geo"
)

func TestNearestAirport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		coords geo.Coordinates
		want   string
	}{
		{"lisbon city center", geo.Coordinates{Lat: 38.7223, Lon: -9.1393}, "LIS"},
		{"paris city center", geo.Coordinates{Lat: 48.8566, Lon: 2.3522}, "CDG"},
		{"vienna city center", geo.Coordinates{Lat: 48.2082, Lon: 16.3738}, "VIE"},
		{"mid-atlantic", geo.Coordinates{Lat: 30.0, Lon: -40.0}, ""},
		{"unset coordinates", geo.Coordinates{}, ""},
		{"invalid coordinates", geo.Coordinates{Lat: 120, Lon: 10}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, nearestAirport(tt.coords))
		})
	}
}
