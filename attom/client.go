// Package attom fetches zip-level price estimates and community demographics
// from the ATTOM gateway.
package attom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rotisserie/eris"

	"github.com/yourorg/neighborhoods-api/internal/httpx"
	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

const defaultBaseURL = "https://api.gateway.attomdata.com"

// ErrDailyLimitExceeded is returned when the gateway answers 429. It is not
// retried; the quota resets daily.
var ErrDailyLimitExceeded = eris.New("attom: daily limit exceeded")

type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

func NewClient(apiKey string, opts ...Option) *Client {
	rc := httpx.NewClient(httpx.Options{Timeout: 6 * time.Second, RetryMax: 3})
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	c := &Client{
		key:     apiKey,
		baseURL: defaultBaseURL,
		http:    rc,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "attom: "+op)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("apikey", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "attom: "+op)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrDailyLimitExceeded
	}
	body, err := httpx.ReadAll(resp.Body, httpx.MaxBody)
	if err != nil {
		return eris.Wrap(err, "attom: "+op)
	}
	if resp.StatusCode == http.StatusNotFound {
		return eris.Wrap(neighborhood.ErrNoResults, "attom: "+op)
	}
	if resp.StatusCode >= 400 {
		return eris.Errorf("attom: %s: unexpected status %d: %s", op, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "attom: "+op+": decode")
	}
	return nil
}

// PriceEstimate returns the median valuation for homes in zip matching the
// bedroom and bathroom criteria: the rental AVM for rentals, the sale AVM
// otherwise.
func (c *Client) PriceEstimate(ctx context.Context, zip string, crit neighborhood.PriceCriteria) (float64, error) {
	q := url.Values{}
	q.Set("postalcode", zip)
	q.Set("pagesize", "100")
	if crit.Bedrooms > 0 {
		q.Set("minBeds", strconv.Itoa(crit.Bedrooms))
		q.Set("maxBeds", strconv.Itoa(crit.Bedrooms))
	}
	if crit.Bathrooms > 0 {
		q.Set("minBathsTotal", strconv.Itoa(crit.Bathrooms))
	}

	path, op := "/propertyapi/v1.0.0/avm/snapshot", "avm snapshot"
	if crit.Rental() {
		path, op = "/propertyapi/v1.0.0/valuation/rentalavm", "rental avm"
	}
	var resp avmResponse
	if err := c.get(ctx, op, path, q, &resp); err != nil {
		return 0, err
	}
	values := resp.values(crit.Rental())
	if len(values) == 0 {
		return 0, eris.Wrapf(neighborhood.ErrNoResults, "attom: %s for %s", op, zip)
	}
	return median(values), nil
}

// Demographics returns the community profile for a zip code.
func (c *Client) Demographics(ctx context.Context, zip string) (*neighborhood.Demographics, error) {
	q := url.Values{}
	q.Set("AreaId", "ZI"+zip)

	var resp communityResponse
	if err := c.get(ctx, "community", "/communityapi/v2.0.0/area/full", q, &resp); err != nil {
		return nil, err
	}
	items := resp.Response.Result.Package.Item
	if len(items) == 0 {
		return nil, eris.Wrapf(neighborhood.ErrNoResults, "attom: community for %s", zip)
	}
	return items[0].toDemographics(zip), nil
}

var (
	_ neighborhood.PriceEstimator     = (*Client)(nil)
	_ neighborhood.DemographicsSource = (*Client)(nil)
)
