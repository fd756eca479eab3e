package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gilby125/travel-index-api/airport"
	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/pkg/health"
	"github.com/gilby125/travel-index-api/pkg/upstream"
	"github.com/gilby125/travel-index-api/travelindex"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockComputer struct {
	mock.Mock
}

func (m *mockComputer) Compute(ctx context.Context, home airport.Location, weights travelindex.Weights) (*travelindex.Report, error) {
	args := m.Called(ctx, home, weights)
	if r := args.Get(0); r != nil {
		return r.(*travelindex.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAirportResolver struct {
	mock.Mock
}

func (m *mockAirportResolver) Resolve(ctx context.Context, loc airport.Location) (string, error) {
	args := m.Called(ctx, loc)
	return args.String(0), args.Error(1)
}

func newTestRouter(calc IndexComputer, resolver AirportResolver, cat catalog.Store) *gin.Engine {
	router := gin.New()
	RegisterRoutes(router, calc, resolver, cat, health.NewHealthChecker("test"))
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRecommendations(t *testing.T) {
	report := &travelindex.Report{
		RequestID:   "6e0c9bd4-4c5f-4f4e-9a30-8a1d2a3f4b5c",
		HomeAirport: "MUC",
		Rankings: []travelindex.Ranking{
			{CityID: "lisbon", City: "Lisbon", Score: 0.82},
		},
	}

	calc := new(mockComputer)
	calc.On("Compute", mock.Anything,
		airport.Location{City: "Munich", Country: "Germany"},
		travelindex.Weights(nil)).Return(report, nil)

	router := newTestRouter(calc, new(mockAirportResolver), catalog.NewStaticStore(nil))

	w := postJSON(router, "/api/v1/travel-recommendations",
		`{"home_city":"Munich","home_country":"Germany"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var got travelindex.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "MUC", got.HomeAirport)
	require.Len(t, got.Rankings, 1)
	assert.Equal(t, "lisbon", got.Rankings[0].CityID)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateRecommendations_PassesWeightOverride(t *testing.T) {
	calc := new(mockComputer)
	calc.On("Compute", mock.Anything, mock.Anything,
		travelindex.Weights{"flight_price": 0.5, "weather": 0.5}).
		Return(&travelindex.Report{}, nil)

	router := newTestRouter(calc, new(mockAirportResolver), catalog.NewStaticStore(nil))

	w := postJSON(router, "/api/v1/travel-recommendations",
		`{"home_city":"Munich","home_country":"Germany","weights":{"flight_price":0.5,"weather":0.5}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	calc.AssertExpectations(t)
}

func TestCreateRecommendations_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bad weights", fmt.Errorf("%w: weights sum to 0.7", travelindex.ErrConfig), http.StatusBadRequest},
		{"provider down", fmt.Errorf("pricing: %w", upstream.ErrUnavailable), http.StatusServiceUnavailable},
		{"home unresolvable", fmt.Errorf("home: %w", airport.ErrResolution), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := new(mockComputer)
			calc.On("Compute", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			router := newTestRouter(calc, new(mockAirportResolver), catalog.NewStaticStore(nil))
			w := postJSON(router, "/api/v1/travel-recommendations",
				`{"home_city":"Munich","home_country":"Germany"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCreateRecommendations_RejectsIncompleteBody(t *testing.T) {
	calc := new(mockComputer)
	router := newTestRouter(calc, new(mockAirportResolver), catalog.NewStaticStore(nil))

	for _, body := range []string{
		`{}`,
		`{"home_city":"Munich"}`,
		`{"home_country":"Germany"}`,
		`not json`,
	} {
		w := postJSON(router, "/api/v1/travel-recommendations", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
	calc.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveAirport(t *testing.T) {
	resolver := new(mockAirportResolver)
	resolver.On("Resolve", mock.Anything,
		airport.Location{City: "Lisbon", Country: "Portugal"}).Return("LIS", nil)

	router := newTestRouter(new(mockComputer), resolver, catalog.NewStaticStore(nil))

	w := postJSON(router, "/api/v1/resolve-airport", `{"city":"Lisbon","country":"Portugal"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "LIS", got["airport_code"])
	assert.Equal(t, "Lisbon", got["city"])
}

func TestResolveAirport_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unresolvable", airport.ErrResolution, http.StatusBadGateway},
		{"provider down", fmt.Errorf("inference: %w", upstream.ErrUnavailable), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(mockAirportResolver)
			resolver.On("Resolve", mock.Anything, mock.Anything).Return("", tt.err)

			router := newTestRouter(new(mockComputer), resolver, catalog.NewStaticStore(nil))
			w := postJSON(router, "/api/v1/resolve-airport", `{"city":"Atlantis","country":"Nowhere"}`)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListDestinations(t *testing.T) {
	cat := catalog.NewStaticStore([]catalog.Destination{
		{CityID: "lisbon", City: "Lisbon", Country: "Portugal", IATACode: "LIS"},
		{CityID: "vienna", City: "Vienna", Country: "Austria", IATACode: "VIE"},
	})

	router := newTestRouter(new(mockComputer), new(mockAirportResolver), cat)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Count        int                   `json:"count"`
		Destinations []catalog.Destination `json:"destinations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(new(mockComputer), new(mockAirportResolver), catalog.NewStaticStore(nil))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
