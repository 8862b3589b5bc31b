package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/neighborhoods-api/http"
	"github.com/yourorg/neighborhoods-api/internal/events"
	"github.com/yourorg/neighborhoods-api/internal/logger"
)

type RouterDeps struct {
	Engine     httpapi.Searcher
	Demography httpapi.DemographyLookup
	Pub        events.Publisher
	// RatePerMinute caps requests per client IP. Zero disables the limit.
	RatePerMinute int
}

func BuildRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)
	if d.RatePerMinute > 0 {
		r.Use(httprate.LimitByIP(d.RatePerMinute, 1*time.Minute)) // protect upstream quota
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	httpapi.RegisterHealth(r)
	httpapi.RegisterNeighborhoods(r, httpapi.NeighborhoodsDeps{Engine: d.Engine, Pub: d.Pub})
	httpapi.RegisterDemography(r, httpapi.DemographyDeps{Service: d.Demography})
	return r
}
