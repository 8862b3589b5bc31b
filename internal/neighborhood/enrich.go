package neighborhood

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Record fields filled by enrichment, as they appear in the response.
const (
	FieldCommute       = "commuteInfo"
	FieldStreetAddress = "streetAddress"
	FieldPrice         = "priceEstimate"
	FieldAmenities     = "amenities_attractions"
	FieldPhotos        = "googlePics"
	FieldDemographics  = "demographics"
)

// DefaultMaxPhotos caps googlePics per neighborhood. Config may lower it,
// never raise it.
const DefaultMaxPhotos = 7

const countryUSA = "USA"

// FieldResult is the outcome of one attempt to fill one field. Err is nil on
// success.
type FieldResult struct {
	Neighborhood string `json:"neighborhood"`
	Field        string `json:"field"`
	Err          error  `json:"-"`
}

func (f FieldResult) OK() bool { return f.Err == nil }

type outcomeLog struct {
	mu      sync.Mutex
	results []FieldResult
	sealed  bool
}

func (o *outcomeLog) add(name, field string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sealed {
		return
	}
	o.results = append(o.results, FieldResult{Neighborhood: name, Field: field, Err: err})
	if err != nil {
		zap.L().Debug("enrich: field failed",
			zap.String("neighborhood", name),
			zap.String("field", field),
			zap.Error(err),
		)
	}
}

func (o *outcomeLog) seal() []FieldResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sealed = true
	return append([]FieldResult(nil), o.results...)
}

// enrich runs the three per-neighborhood enrichers together and returns once
// all of them settled. None of them fail; their errors land in the outcome log.
func (e *Engine) enrich(ctx context.Context, st *run, stub Stub, req SearchRequest) {
	var g errgroup.Group
	g.Go(func() error {
		e.enrichAddress(ctx, st, stub, req.Criteria())
		return nil
	})
	g.Go(func() error {
		e.enrichAmenities(ctx, st, stub)
		return nil
	})
	g.Go(func() error {
		e.enrichPhotos(ctx, st, stub)
		return nil
	})
	_ = g.Wait()
}

// enrichAddress reverse geocodes the neighborhood. US addresses also get the
// full address attributes and, keyed by zip, a price estimate.
func (e *Engine) enrichAddress(ctx context.Context, st *run, stub Stub, c PriceCriteria) {
	addr, err := e.providers.Reverse.ReverseGeocode(ctx, stub.Coordinates())
	if err != nil {
		st.outcomes.add(stub.Name, FieldStreetAddress, eris.Wrap(err, "reverse geocode"))
		return
	}
	usa := addr.Country == countryUSA
	st.set.Update(stub.Name, func(r *Record) {
		r.StreetAddress = addr.FormattedAddress
		if usa {
			r.FormattedAddress = addr.FormattedAddress
			r.City = addr.City
			r.State = addr.State
			r.Country = addr.Country
			r.Zip = addr.Zip
		}
	})
	st.outcomes.add(stub.Name, FieldStreetAddress, nil)
	if !usa {
		return
	}

	var g errgroup.Group
	if e.providers.Prices != nil {
		g.Go(func() error {
			e.enrichPrice(ctx, st, stub, addr.Zip, c)
			return nil
		})
	}
	if e.cfg.Demographics && e.providers.Demographics != nil {
		g.Go(func() error {
			e.enrichDemographics(ctx, st, stub, addr.Zip)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) enrichPrice(ctx context.Context, st *run, stub Stub, zip string, c PriceCriteria) {
	if zip == "" {
		st.outcomes.add(stub.Name, FieldPrice, eris.New("no zip for price estimate"))
		return
	}
	price, err := e.providers.Prices.PriceEstimate(ctx, zip, c)
	if err != nil {
		st.outcomes.add(stub.Name, FieldPrice, eris.Wrap(err, "price estimate"))
		return
	}
	beds := c.Bedrooms
	st.set.Update(stub.Name, func(r *Record) {
		r.PriceEstimate = &price
		r.HomeSize = &beds
		r.PropertyType = c.PropertyType()
	})
	st.outcomes.add(stub.Name, FieldPrice, nil)
}

func (e *Engine) enrichDemographics(ctx context.Context, st *run, stub Stub, zip string) {
	if zip == "" {
		st.outcomes.add(stub.Name, FieldDemographics, eris.New("no zip for demographics"))
		return
	}
	d, err := e.providers.Demographics.Demographics(ctx, zip)
	if err != nil {
		st.outcomes.add(stub.Name, FieldDemographics, eris.Wrap(err, "demographics"))
		return
	}
	st.set.Update(stub.Name, func(r *Record) { r.Demographics = d })
	st.outcomes.add(stub.Name, FieldDemographics, nil)
}

func (e *Engine) enrichAmenities(ctx context.Context, st *run, stub Stub) {
	a, err := e.providers.Amenities.AmenitiesNear(ctx, stub.Coordinates())
	if err != nil {
		st.outcomes.add(stub.Name, FieldAmenities, eris.Wrap(err, "amenities"))
		return
	}
	st.set.Update(stub.Name, func(r *Record) { r.AmenitiesAttractions = a })
	st.outcomes.add(stub.Name, FieldAmenities, nil)
}

func (e *Engine) enrichPhotos(ctx context.Context, st *run, stub Stub) {
	limit := e.cfg.MaxPhotos
	refs, err := e.providers.Photos.PhotoRefs(ctx, stub.PlaceID, limit)
	if err != nil {
		st.outcomes.add(stub.Name, FieldPhotos, eris.Wrap(err, "photo refs"))
		return
	}
	if len(refs) > limit {
		refs = refs[:limit]
	}
	pics, err := e.providers.Photos.ResolvePhotos(ctx, refs)
	if err != nil {
		st.outcomes.add(stub.Name, FieldPhotos, eris.Wrap(err, "resolve photos"))
		return
	}
	if len(pics) > limit {
		pics = pics[:limit]
	}
	st.set.Update(stub.Name, func(r *Record) { r.GooglePics = pics })
	st.outcomes.add(stub.Name, FieldPhotos, nil)
}

func (e *Engine) commute(ctx context.Context, st *run, to Coordinates, stubs []Stub) {
	// a failed batch still counts as the commute signal so the response never
	// waits on it
	defer st.gate.Signal(SignalCommute)

	commutes, err := e.providers.Commutes.Commutes(ctx, to, e.cfg.CommuteMode, stubs)
	if err != nil {
		err = eris.Wrap(err, "commute batch")
		zap.L().Warn("enrich: commute batch failed", zap.Error(err))
		for _, s := range stubs {
			st.outcomes.add(s.Name, FieldCommute, err)
		}
		return
	}
	for _, s := range stubs {
		c, ok := commutes[s.Name]
		if !ok {
			st.outcomes.add(s.Name, FieldCommute, ErrNoResults)
			continue
		}
		st.set.Update(s.Name, func(r *Record) { r.CommuteInfo = &c })
		st.outcomes.add(s.Name, FieldCommute, nil)
	}
}
