package google

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type detailsResponse struct {
	apiStatus
	Result struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

// PhotoRefs returns up to limit photo references for a place.
func (c *Client) PhotoRefs(ctx context.Context, placeID string, limit int) ([]string, error) {
	if placeID == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "photos")

	var resp detailsResponse
	if err := c.get(ctx, "place details", "/place/details/json", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("place details"); err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(resp.Result.Photos))
	for _, p := range resp.Result.Photos {
		if p.PhotoReference == "" {
			continue
		}
		refs = append(refs, p.PhotoReference)
		if limit > 0 && len(refs) == limit {
			break
		}
	}
	return refs, nil
}

// ResolvePhotos turns photo references into image URLs in reference order.
// The photo endpoint redirects to the image; the redirect target is kept so
// the key never reaches the client. References that fail to resolve are
// dropped; the call fails only when none resolved.
func (c *Client) ResolvePhotos(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return []string{}, nil
	}
	urls := make([]string, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			urls[i], errs[i] = c.resolvePhoto(ctx, ref)
			if errs[i] != nil {
				zap.L().Debug("google: photo failed", zap.Error(errs[i]))
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(refs))
	for i, u := range urls {
		if errs[i] == nil && u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil, eris.Wrap(errs[0], "google: resolve photos")
	}
	return out, nil
}

func (c *Client) resolvePhoto(ctx context.Context, ref string) (string, error) {
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(c.photoMaxWidth))
	q.Set("photo_reference", ref)
	req, err := c.newRequest(ctx, "/place/photo", q)
	if err != nil {
		return "", eris.Wrap(err, "google: place photo")
	}
	resp, err := c.photos.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "google: place photo")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusFound, http.StatusMovedPermanently, http.StatusSeeOther, http.StatusTemporaryRedirect:
		loc := resp.Header.Get("Location")
		if loc == "" {
			return "", eris.New("google: place photo: redirect without location")
		}
		return loc, nil
	}
	return "", eris.Errorf("google: place photo: unexpected status %d", resp.StatusCode)
}
