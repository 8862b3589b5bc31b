// Package cached puts a Redis read-through cache in front of the geocoder and
// the demographics source. Cache failures are logged and bypassed.
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/neighborhoods-api/internal/canon"
	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
	"github.com/yourorg/neighborhoods-api/internal/redisx"
)

// KV is the subset of redisx.Client the caches need. Get returns
// redisx.ErrMiss for an absent key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
}

var _ KV = (*redisx.Client)(nil)

type Geocoder struct {
	Next neighborhood.Geocoder
	KV   KV
	TTL  time.Duration
}

func (g *Geocoder) Geocode(ctx context.Context, address string) (neighborhood.Coordinates, error) {
	key := "geo:v1:" + canon.Address(address)
	var at neighborhood.Coordinates
	if lookup(ctx, g.KV, key, &at) {
		return at, nil
	}
	at, err := g.Next.Geocode(ctx, address)
	if err != nil {
		return at, err
	}
	store(ctx, g.KV, key, at, g.TTL)
	return at, nil
}

type Demographics struct {
	Next neighborhood.DemographicsSource
	KV   KV
	TTL  time.Duration
}

func (d *Demographics) Demographics(ctx context.Context, zip string) (*neighborhood.Demographics, error) {
	key := "demo:v1:" + canon.Zip(zip)
	var out neighborhood.Demographics
	if lookup(ctx, d.KV, key, &out) {
		return &out, nil
	}
	got, err := d.Next.Demographics(ctx, zip)
	if err != nil {
		return nil, err
	}
	store(ctx, d.KV, key, got, d.TTL)
	return got, nil
}

func lookup(ctx context.Context, kv KV, key string, dst any) bool {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redisx.ErrMiss) {
			zap.L().Warn("cache: get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		zap.L().Warn("cache: corrupt entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func store(ctx context.Context, kv KV, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := kv.Set(ctx, key, string(b), ttl); err != nil {
		zap.L().Warn("cache: set failed", zap.String("key", key), zap.Error(err))
	}
}

var (
	_ neighborhood.Geocoder           = (*Geocoder)(nil)
	_ neighborhood.DemographicsSource = (*Demographics)(nil)
)
