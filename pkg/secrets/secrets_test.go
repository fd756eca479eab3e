package secrets_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilby125/travel-index-api/pkg/secrets"
)

func TestVaultSource_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/travel-index", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"data": {
					"amadeus_api_key": "ak",
					"amadeus_api_secret": "as",
					"inference_api_key": "hf",
					"openweather_api_key": "ow"
				}
			}
		}`))
	}))
	defer srv.Close()

	src := secrets.NewVaultSource(srv.URL, "test-token", "secret/data/travel-index")
	creds, err := src.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ak", creds.AmadeusAPIKey)
	assert.Equal(t, "as", creds.AmadeusAPISecret)
	assert.Equal(t, "hf", creds.InferenceAPIKey)
	assert.Equal(t, "ow", creds.OpenWeatherAPIKey)
}

func TestVaultSource_Resolve_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	src := secrets.NewVaultSource(srv.URL, "t", "secret/data/missing")
	_, err := src.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEnvSource_Resolve(t *testing.T) {
	t.Setenv("AMADEUS_API_KEY", "env-key")
	t.Setenv("AMADEUS_API_SECRET", "env-secret")
	t.Setenv("INFERENCE_API_KEY", "env-hf")
	t.Setenv("OPENWEATHER_API_KEY", "env-ow")

	creds, err := secrets.EnvSource{}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-key", creds.AmadeusAPIKey)
	assert.Equal(t, "env-secret", creds.AmadeusAPISecret)
	assert.Equal(t, "env-hf", creds.InferenceAPIKey)
	assert.Equal(t, "env-ow", creds.OpenWeatherAPIKey)
}
