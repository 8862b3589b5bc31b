// Package google talks to the Google Maps web services: geocoding, places,
// distance matrix and place photos.
package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/yourorg/neighborhoods-api/internal/httpx"
	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client implements the neighborhood provider interfaces backed by Google.
type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
	// photos never follows redirects; the Location header is the image URL.
	photos  *retryablehttp.Client
	limiter *rate.Limiter

	amenityTypes    []string
	attractionTypes []string
	amenityRadius   int
	perCategory     int
	photoMaxWidth   int
}

type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithRetryMax(n int) Option {
	return func(c *Client) {
		c.http.RetryMax = n
		c.photos.RetryMax = n
	}
}

// WithRateLimit caps outgoing requests per second across every endpoint.
// Zero or less disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.HTTPClient.Timeout = d
		c.photos.HTTPClient.Timeout = d
	}
}

// WithAmenityTypes replaces the place types queried for amenities and
// attractions.
func WithAmenityTypes(amenities, attractions []string) Option {
	return func(c *Client) {
		c.amenityTypes = amenities
		c.attractionTypes = attractions
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		key:     apiKey,
		baseURL: defaultBaseURL,
		http:    httpx.NewClient(httpx.Options{Timeout: 8 * time.Second, RetryMax: 2}),
		photos: httpx.NewClient(httpx.Options{
			Timeout:  8 * time.Second,
			RetryMax: 2,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}),
		limiter:         rate.NewLimiter(50, 50),
		amenityTypes:    DefaultAmenityTypes,
		attractionTypes: DefaultAttractionTypes,
		amenityRadius:   1500,
		perCategory:     3,
		photoMaxWidth:   800,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// apiStatus is the envelope every legacy Maps endpoint returns.
type apiStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// check maps a non-OK status to an error. ZERO_RESULTS wraps
// neighborhood.ErrNoResults.
func (s apiStatus) check(op string) error {
	switch s.Status {
	case "OK", "":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return eris.Wrap(neighborhood.ErrNoResults, "google: "+op)
	}
	if s.ErrorMessage != "" {
		return eris.Errorf("google: %s: %s: %s", op, s.Status, s.ErrorMessage)
	}
	return eris.Errorf("google: %s: %s", op, s.Status)
}

func (c *Client) newRequest(ctx context.Context, path string, q url.Values) (*retryablehttp.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q.Set("key", c.key)
	return retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
}

// get fetches path and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, path, q)
	if err != nil {
		return eris.Wrap(err, "google: "+op)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "google: "+op)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := httpx.ReadAll(resp.Body, httpx.MaxBody)
	if err != nil {
		return eris.Wrap(err, "google: "+op)
	}
	if resp.StatusCode >= 400 {
		return eris.Errorf("google: %s: unexpected status %d: %s", op, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "google: "+op+": decode")
	}
	return nil
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location latLng `json:"location"`
}

func formatLatLng(at neighborhood.Coordinates) string {
	return formatFloat(at.Latitude) + "," + formatFloat(at.Longitude)
}

var (
	_ neighborhood.Geocoder          = (*Client)(nil)
	_ neighborhood.ReverseGeocoder   = (*Client)(nil)
	_ neighborhood.PlacesSearcher    = (*Client)(nil)
	_ neighborhood.CommuteCalculator = (*Client)(nil)
	_ neighborhood.AmenityFinder     = (*Client)(nil)
	_ neighborhood.PhotoSource       = (*Client)(nil)
)
