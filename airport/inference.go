package airport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gilby125/travel-index-api/pkg/upstream"
)

const inferencePrompt = `You are a travel assistant. Return the IATA code of the nearest major international airport to %s, %s.

Requirements:
- Respond with ONLY the 3-letter IATA code, nothing else
- The airport MUST serve the given city
- No explanations, no punctuation`

// InferenceClient asks a hosted language model for the nearest airport to a
// city. The response is free text; the resolver validates its shape.
type InferenceClient struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

// NewInferenceClient creates an inference client.
func NewInferenceClient(baseURL, apiKey string, cfg upstream.Config) *InferenceClient {
	return &InferenceClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  upstream.NewClient(cfg),
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceChoice struct {
	GeneratedText string `json:"generated_text"`
}

// NearestAirportCode issues a single-turn prompt and returns the raw model
// output, trimmed. Exactly one request per call; retries below this level
// only cover transport failures.
func (c *InferenceClient) NearestAirportCode(ctx context.Context, city, country string) (string, error) {
	payload, err := json.Marshal(inferenceRequest{
		Inputs: fmt.Sprintf(inferencePrompt, city, country),
		Parameters: inferenceParameters{
			MaxNewTokens:   10,
			Temperature:    0.1,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", upstream.WrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: inference status %d: %s", upstream.ErrUnavailable, resp.StatusCode, body)
	}

	// The provider returns either a list of choices or a single object.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstream.WrapTransportErr(err)
	}

	var choices []inferenceChoice
	if err := json.Unmarshal(raw, &choices); err == nil && len(choices) > 0 {
		return strings.TrimSpace(choices[0].GeneratedText), nil
	}

	var single inferenceChoice
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single.GeneratedText), nil
	}

	return "", fmt.Errorf("unexpected inference response shape: %s", raw)
}
