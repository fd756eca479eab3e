// Package pricing fetches live round-trip flight prices from the Amadeus
// flight-offers API. Prices are deliberately never cached: a quote is only
// meaningful at the moment it is requested.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/text/currency"

	"github.com/gilby125/travel-index-api/config"
	"github.com/gilby125/travel-index-api/pkg/logger"
	"github.com/gilby125/travel-index-api/pkg/secrets"
	"github.com/gilby125/travel-index-api/pkg/upstream"
)

var (
	// ErrNoRoute is returned when the provider reports no bookable offers
	// between the two airports for the requested dates.
	ErrNoRoute = errors.New("no route between airports")

	// ErrInvalidRoute is returned for route requests that can never produce
	// an offer, such as pricing a flight from an airport to itself.
	ErrInvalidRoute = errors.New("invalid route")
)

// tokenExpiryMargin is subtracted from the provider's expires_in so a token
// is refreshed before it actually lapses mid-request.
const tokenExpiryMargin = 30 * time.Second

// Quote is a live round-trip price for one origin/destination pair.
type Quote struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	DepartureDate string  `json:"departure_date"`
	ReturnDate    string  `json:"return_date"`
}

// AmadeusPricer prices round trips through the Amadeus flight-offers search
// endpoint. It holds the OAuth access token in memory and refreshes it when
// it is about to expire; tokens never touch durable storage.
type AmadeusPricer struct {
	client    *retryablehttp.Client
	authURL   string
	offersURL string
	apiKey    string
	apiSecret string
	unit      currency.Unit

	departureLeadDays int
	returnLeadDays    int
	maxOffers         int

	now func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewAmadeusPricer builds a pricer from configuration and resolved
// credentials. The configured currency must be a valid ISO 4217 code.
func NewAmadeusPricer(cfg config.PricerConfig, creds *secrets.Credentials, client *retryablehttp.Client) (*AmadeusPricer, error) {
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid pricer currency %q: %w", cfg.Currency, err)
	}

	return &AmadeusPricer{
		client:            client,
		authURL:           cfg.AuthURL,
		offersURL:         cfg.FlightOffersURL,
		apiKey:            creds.AmadeusAPIKey,
		apiSecret:         creds.AmadeusAPISecret,
		unit:              unit,
		departureLeadDays: cfg.DepartureLeadDays,
		returnLeadDays:    cfg.ReturnLeadDays,
		maxOffers:         cfg.MaxOffers,
		now:               time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type offersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
	} `json:"data"`
}

// Price fetches the cheapest round-trip offer between two airports. The
// departure and return dates are derived from the configured lead times so
// every destination in a batch is priced over the same travel window.
func (p *AmadeusPricer) Price(ctx context.Context, origin, destination string) (*Quote, error) {
	if origin == destination {
		return nil, fmt.Errorf("%w: origin and destination are both %s", ErrInvalidRoute, origin)
	}

	token, err := p.accessToken(ctx, false)
	if err != nil {
		return nil, err
	}

	departure := p.now().AddDate(0, 0, p.departureLeadDays).Format("2006-01-02")
	ret := p.now().AddDate(0, 0, p.returnLeadDays).Format("2006-01-02")

	quote, retry, err := p.searchOffers(ctx, token, origin, destination, departure, ret)
	if retry {
		// The token was rejected; discard it and try once with a fresh one.
		token, err = p.accessToken(ctx, true)
		if err != nil {
			return nil, err
		}
		quote, _, err = p.searchOffers(ctx, token, origin, destination, departure, ret)
	}
	return quote, err
}

func (p *AmadeusPricer) searchOffers(ctx context.Context, token, origin, destination, departure, ret string) (*Quote, bool, error) {
	params := url.Values{}
	params.Set("originLocationCode", origin)
	params.Set("destinationLocationCode", destination)
	params.Set("departureDate", departure)
	params.Set("returnDate", ret)
	params.Set("adults", "1")
	params.Set("currencyCode", p.unit.String())
	params.Set("max", strconv.Itoa(p.maxOffers))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.offersURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build offers request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, false, upstream.WrapTransportErr(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("%w: offers request rejected with status 401", upstream.ErrUnavailable)
	case resp.StatusCode == http.StatusBadRequest:
		// Amadeus answers 400 for city pairs it cannot serve at all.
		body, _ := io.ReadAll(resp.Body)
		logger.WithField("origin", origin).WithField("destination", destination).
			Debug("offers request rejected: " + strings.TrimSpace(string(body)))
		return nil, false, fmt.Errorf("%w: %s-%s", ErrNoRoute, origin, destination)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("%w: offers request returned status %d", upstream.ErrUnavailable, resp.StatusCode)
	}

	var offers offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&offers); err != nil {
		return nil, false, fmt.Errorf("failed to decode offers response: %w", err)
	}
	if len(offers.Data) == 0 {
		return nil, false, fmt.Errorf("%w: %s-%s", ErrNoRoute, origin, destination)
	}

	cheapest := -1.0
	quoteCurrency := p.unit.String()
	for _, offer := range offers.Data {
		price, perr := strconv.ParseFloat(offer.Price.GrandTotal, 64)
		if perr != nil || price <= 0 {
			continue
		}
		if cheapest < 0 || price < cheapest {
			cheapest = price
			if offer.Price.Currency != "" {
				quoteCurrency = offer.Price.Currency
			}
		}
	}
	if cheapest < 0 {
		return nil, false, fmt.Errorf("%w: no parsable offer price for %s-%s", ErrNoRoute, origin, destination)
	}

	return &Quote{
		Origin:        origin,
		Destination:   destination,
		Price:         cheapest,
		Currency:      quoteCurrency,
		DepartureDate: departure,
		ReturnDate:    ret,
	}, false, nil
}

// accessToken returns a cached OAuth token, fetching a new one when the
// cached token is missing, near expiry, or force is set.
func (p *AmadeusPricer) accessToken(ctx context.Context, force bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !force && p.token != "" && p.now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.apiKey)
	form.Set("client_secret", p.apiSecret)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", upstream.WrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: token request returned status %d", upstream.ErrUnavailable, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token response carried no access token", upstream.ErrUnavailable)
	}

	p.token = tok.AccessToken
	p.tokenExpiry = p.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	return p.token, nil
}
