package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

type DemographyLookup interface {
	Lookup(ctx context.Context, zips []string) ([]*neighborhood.Demographics, error)
}

// DemographyDeps.Service may be nil when no demographics provider is
// configured; every request then fails with 501.
type DemographyDeps struct {
	Service DemographyLookup
}

func RegisterDemography(r chi.Router, d DemographyDeps) {
	r.Post("/api/getDemography", func(w http.ResponseWriter, req *http.Request) {
		var zips []string
		if err := json.NewDecoder(req.Body).Decode(&zips); err != nil {
			writeError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if d.Service == nil {
			writeError(w, req, http.StatusNotImplemented, "demography_unavailable", "no demographics provider configured")
			return
		}
		profiles, err := d.Service.Lookup(req.Context(), zips)
		if err != nil {
			zap.L().Warn("getDemography: lookup failed", zap.Int("zips", len(zips)), zap.Error(err))
			writeError(w, req, http.StatusNotImplemented, "demography_failed", err.Error())
			return
		}
		if profiles == nil {
			profiles = []*neighborhood.Demographics{}
		}
		render.JSON(w, req, profiles)
	})
}
