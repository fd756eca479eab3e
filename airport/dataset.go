package airport

import (
	"github.com/gilby125/travel-index-api/pkg/geo"
)

// maxFallbackDistanceKm bounds the dataset fallback: an airport further than
// this from the city is not a usable answer.
const maxFallbackDistanceKm = 500.0

// datasetAirport is one entry in the embedded major-airport dataset.
type datasetAirport struct {
	Code    string
	Name    string
	City    string
	Country string
	Coords  geo.Coordinates
}

// majorAirports is a small embedded dataset of major international airports,
// used only as a fallback when the inference provider returns an unusable
// answer and the location's coordinates are known.
var majorAirports = []datasetAirport{
	{"AMS", "Amsterdam Airport Schiphol", "Amsterdam", "Netherlands", geo.Coordinates{Lat: 52.3105, Lon: 4.7683}},
	{"ATH", "Athens International Airport", "Athens", "Greece", geo.Coordinates{Lat: 37.9364, Lon: 23.9445}},
	{"BCN", "Barcelona-El Prat Airport", "Barcelona", "Spain", geo.Coordinates{Lat: 41.2974, Lon: 2.0833}},
	{"BER", "Berlin Brandenburg Airport", "Berlin", "Germany", geo.Coordinates{Lat: 52.3667, Lon: 13.5033}},
	{"BRU", "Brussels Airport", "Brussels", "Belgium", geo.Coordinates{Lat: 50.9014, Lon: 4.4844}},
	{"BUD", "Budapest Ferenc Liszt International Airport", "Budapest", "Hungary", geo.Coordinates{Lat: 47.4298, Lon: 19.2611}},
	{"CDG", "Paris Charles de Gaulle Airport", "Paris", "France", geo.Coordinates{Lat: 49.0097, Lon: 2.5479}},
	{"CPH", "Copenhagen Airport", "Copenhagen", "Denmark", geo.Coordinates{Lat: 55.6181, Lon: 12.6561}},
	{"DUB", "Dublin Airport", "Dublin", "Ireland", geo.Coordinates{Lat: 53.4264, Lon: -6.2499}},
	{"FCO", "Rome Fiumicino Airport", "Rome", "Italy", geo.Coordinates{Lat: 41.8003, Lon: 12.2389}},
	{"FRA", "Frankfurt Airport", "Frankfurt", "Germany", geo.Coordinates{Lat: 50.0379, Lon: 8.5622}},
	{"GVA", "Geneva Airport", "Geneva", "Switzerland", geo.Coordinates{Lat: 46.2381, Lon: 6.1089}},
	{"HEL", "Helsinki Airport", "Helsinki", "Finland", geo.Coordinates{Lat: 60.3172, Lon: 24.9633}},
	{"IST", "Istanbul Airport", "Istanbul", "Turkey", geo.Coordinates{Lat: 41.2608, Lon: 28.7418}},
	{"LHR", "London Heathrow Airport", "London", "United Kingdom", geo.Coordinates{Lat: 51.47, Lon: -0.4543}},
	{"LIS", "Lisbon Humberto Delgado Airport", "Lisbon", "Portugal", geo.Coordinates{Lat: 38.7742, Lon: -9.1342}},
	{"MAD", "Madrid Barajas Airport", "Madrid", "Spain", geo.Coordinates{Lat: 40.4983, Lon: -3.5676}},
	{"MUC", "Munich Airport", "Munich", "Germany", geo.Coordinates{Lat: 48.3538, Lon: 11.7861}},
	{"MXP", "Milan Malpensa Airport", "Milan", "Italy", geo.Coordinates{Lat: 45.6306, Lon: 8.7281}},
	{"OPO", "Porto Airport", "Porto", "Portugal", geo.Coordinates{Lat: 41.2481, Lon: -8.6814}},
	{"OSL", "Oslo Gardermoen Airport", "Oslo", "Norway", geo.Coordinates{Lat: 60.1939, Lon: 11.1004}},
	{"PRG", "Prague Vaclav Havel Airport", "Prague", "Czech Republic", geo.Coordinates{Lat: 50.1008, Lon: 14.26}},
	{"VIE", "Vienna International Airport", "Vienna", "Austria", geo.Coordinates{Lat: 48.1103, Lon: 16.5697}},
	{"WAW", "Warsaw Chopin Airport", "Warsaw", "Poland", geo.Coordinates{Lat: 52.1657, Lon: 20.9671}},
	{"ZRH", "Zurich Airport", "Zurich", "Switzerland", geo.Coordinates{Lat: 47.4647, Lon: 8.5492}},
}

// nearestAirport returns the code of the dataset airport closest to the
// given coordinates within maxFallbackDistanceKm, or "" when none qualifies.
func nearestAirport(coords geo.Coordinates) string {
	if coords.IsZero() || !coords.IsValid() {
		return ""
	}

	best := ""
	bestDistance := maxFallbackDistanceKm
	for _, apt := range majorAirports {
		d := geo.DistanceBetween(coords, apt.Coords)
		if d < bestDistance {
			best = apt.Code
			bestDistance = d
		}
	}
	return best
}
