// Package secrets resolves third-party provider credentials at cold start.
// Credentials are held in memory only and never persisted by the service.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gilby125/travel-index-api/pkg/upstream"
)

// Credentials holds every provider credential the pipeline needs.
type Credentials struct {
	AmadeusAPIKey     string `json:"amadeus_api_key"`
	AmadeusAPISecret  string `json:"amadeus_api_secret"`
	InferenceAPIKey   string `json:"inference_api_key"`
	OpenWeatherAPIKey string `json:"openweather_api_key"`
}

// Source resolves credentials from a backing secret store.
type Source interface {
	Resolve(ctx context.Context) (Credentials, error)
}

// VaultSource reads credentials from a KV v2 secret engine over HTTP.
type VaultSource struct {
	addr   string
	token  string
	path   string
	client *retryablehttp.Client
}

// NewVaultSource creates a VaultSource for the given vault address, token,
// and secret path (e.g. "secret/data/travel-index").
func NewVaultSource(addr, token, path string) *VaultSource {
	return &VaultSource{
		addr:   addr,
		token:  token,
		path:   path,
		client: upstream.NewClient(upstream.DefaultConfig()),
	}
}

// kvResponse mirrors the KV v2 read envelope.
type kvResponse struct {
	Data struct {
		Data Credentials `json:"data"`
	} `json:"data"`
}

// Resolve fetches the credential bundle from the vault.
func (v *VaultSource) Resolve(ctx context.Context) (Credentials, error) {
	url := fmt.Sprintf("%s/v1/%s", v.addr, v.path)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("build vault request: %w", err)
	}
	req.Header.Set("X-Vault-Token", v.token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Credentials{}, upstream.WrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Credentials{}, fmt.Errorf("vault read %s: status %d: %s", v.path, resp.StatusCode, body)
	}

	var kv kvResponse
	if err := json.NewDecoder(resp.Body).Decode(&kv); err != nil {
		return Credentials{}, fmt.Errorf("decode vault response: %w", err)
	}
	return kv.Data.Data, nil
}

// EnvSource reads credentials from environment variables. Used for local
// development and tests where no vault is running.
type EnvSource struct{}

// Resolve reads each credential from its environment variable.
func (EnvSource) Resolve(_ context.Context) (Credentials, error) {
	return Credentials{
		AmadeusAPIKey:     os.Getenv("AMADEUS_API_KEY"),
		AmadeusAPISecret:  os.Getenv("AMADEUS_API_SECRET"),
		InferenceAPIKey:   os.Getenv("INFERENCE_API_KEY"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
	}, nil
}
