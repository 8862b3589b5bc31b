package google

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

// maxOrigins is the distance matrix limit on origins per request.
const maxOrigins = 25

type matrixValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type matrixElement struct {
	Status   string      `json:"status"`
	Distance matrixValue `json:"distance"`
	Duration matrixValue `json:"duration"`
}

type matrixResponse struct {
	apiStatus
	Rows []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// Commutes estimates travel from every neighborhood to one destination. Origins
// are sent in chunks of 25; any failed chunk fails the batch. Neighborhoods
// with no route are left out of the result.
func (c *Client) Commutes(ctx context.Context, to neighborhood.Coordinates, mode string, from []neighborhood.Stub) (map[string]neighborhood.Commute, error) {
	out := make(map[string]neighborhood.Commute, len(from))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(from); start += maxOrigins {
		chunk := from[start:min(start+maxOrigins, len(from))]
		g.Go(func() error {
			got, err := c.matrix(gctx, to, mode, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for name, cm := range got {
				out[name] = cm
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) matrix(ctx context.Context, to neighborhood.Coordinates, mode string, chunk []neighborhood.Stub) (map[string]neighborhood.Commute, error) {
	origins := make([]string, len(chunk))
	for i, s := range chunk {
		origins[i] = formatLatLng(s.Coordinates())
	}
	q := url.Values{}
	q.Set("origins", strings.Join(origins, "|"))
	q.Set("destinations", formatLatLng(to))
	q.Set("mode", mode)

	var resp matrixResponse
	if err := c.get(ctx, "distance matrix", "/distancematrix/json", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("distance matrix"); err != nil {
		return nil, err
	}
	if len(resp.Rows) != len(chunk) {
		return nil, eris.Errorf("google: distance matrix: got %d rows for %d origins", len(resp.Rows), len(chunk))
	}

	out := make(map[string]neighborhood.Commute, len(chunk))
	for i, row := range resp.Rows {
		if len(row.Elements) == 0 || row.Elements[0].Status != "OK" {
			continue
		}
		el := row.Elements[0]
		out[chunk[i].Name] = neighborhood.Commute{
			Mode:            mode,
			Distance:        el.Distance.Text,
			DistanceMeters:  el.Distance.Value,
			Duration:        el.Duration.Text,
			DurationSeconds: el.Duration.Value,
		}
	}
	return out, nil
}
