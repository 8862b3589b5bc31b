// Package httpapi serves the neighborhood search API.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/neighborhoods-api/internal/events"
	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

type Searcher interface {
	Search(ctx context.Context, req neighborhood.SearchRequest) (*neighborhood.Result, error)
}

type NeighborhoodsDeps struct {
	Engine Searcher
	// Pub, when set, receives one event per answered search.
	Pub events.Publisher
}

func RegisterNeighborhoods(r chi.Router, d NeighborhoodsDeps) {
	r.Post("/api/getNeighborhoods", func(w http.ResponseWriter, req *http.Request) {
		var body neighborhood.SearchRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		body.Address = strings.TrimSpace(body.Address)
		if body.Address == "" {
			writeError(w, req, http.StatusBadRequest, "address_required", "")
			return
		}

		res, err := d.Engine.Search(req.Context(), body)
		if err != nil {
			// the client went away; there is nobody to answer
			zap.L().Info("getNeighborhoods: search abandoned",
				zap.String("request_id", middleware.GetReqID(req.Context())),
				zap.Error(err),
			)
			return
		}
		if d.Pub != nil {
			d.Pub.PublishSearchCompleted(req.Context(), completedEvent(res))
		}
		render.JSON(w, req, res.Neighborhoods)
	})
}

func completedEvent(res *neighborhood.Result) events.SearchCompleted {
	evt := events.SearchCompleted{
		RunID:         res.RunID,
		Address:       res.Address,
		Neighborhoods: len(res.Neighborhoods),
		Reason:        string(res.Reason),
		Failures:      len(res.Failures()),
		Duration:      res.Duration,
	}
	if res.Coordinates != nil {
		lat, lon := res.Coordinates.Latitude, res.Coordinates.Longitude
		evt.Latitude, evt.Longitude = &lat, &lon
	}
	return evt
}
