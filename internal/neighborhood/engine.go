// Package neighborhood discovers the neighborhoods around an address and
// enriches each one from several independent providers, answering once
// enough of the work has landed.
package neighborhood

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultMaxWait     = 30 * time.Second
	DefaultCommuteMode = "driving"
)

// Config tunes a search.
type Config struct {
	Radii                []int
	Categories           []string
	DiscoveryConcurrency int
	CommuteMode          string
	// Quorum is the fraction of neighborhoods that must settle before the
	// enrichment signal fires.
	Quorum float64
	// SettleDelay is waited after the gate opens and before the snapshot.
	SettleDelay time.Duration
	// MaxWait forces a response with whatever has landed. Zero waits forever.
	MaxWait      time.Duration
	MaxPhotos    int
	Demographics bool
}

func DefaultConfig() Config {
	return Config{
		Radii:       DefaultRadii(),
		Categories:  DefaultCategories,
		CommuteMode: DefaultCommuteMode,
		Quorum:      DefaultQuorum,
		SettleDelay: DefaultSettleDelay,
		MaxWait:     DefaultMaxWait,
		MaxPhotos:   DefaultMaxPhotos,
	}
}

// Engine runs searches. It holds no per-search state and is safe for
// concurrent use.
type Engine struct {
	providers Providers
	cfg       Config
	discovery *Discovery
}

func NewEngine(p Providers, cfg Config) (*Engine, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if cfg.CommuteMode == "" {
		cfg.CommuteMode = DefaultCommuteMode
	}
	if cfg.Quorum <= 0 || cfg.Quorum > 1 {
		cfg.Quorum = DefaultQuorum
	}
	if cfg.MaxPhotos <= 0 || cfg.MaxPhotos > DefaultMaxPhotos {
		cfg.MaxPhotos = DefaultMaxPhotos
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Engine{
		providers: p,
		cfg:       cfg,
		discovery: &Discovery{
			Places:      p.Places,
			Radii:       cfg.Radii,
			Categories:  cfg.Categories,
			Concurrency: cfg.DiscoveryConcurrency,
		},
	}, nil
}

// Result is the single answer to a search.
type Result struct {
	RunID         string
	Address       string
	Coordinates   *Coordinates
	Neighborhoods map[string]Record
	Reason        Reason
	Signals       []Signal
	Discovered    int
	QuorumNeed    int
	Settled       int
	Fields        []FieldResult
	Duration      time.Duration
}

// Failures returns the field attempts that did not succeed.
func (r *Result) Failures() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// run is the state of one search, shared by its goroutines.
type run struct {
	set      *Set
	gate     *Gate
	outcomes *outcomeLog

	mu         sync.Mutex
	at         *Coordinates
	discovered int
	quorum     *Quorum
}

func newRun() *run {
	return &run{
		set:      NewSet(),
		gate:     NewGate(SignalCommute, SignalQuorum),
		outcomes: &outcomeLog{},
	}
}

func (st *run) discoveredAt(at Coordinates, n int, q *Quorum) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.at = &at
	st.discovered = n
	st.quorum = q
}

func (st *run) finish(res *Result) {
	res.Neighborhoods = st.set.Seal()
	res.Fields = st.outcomes.seal()
	res.Reason = st.gate.Reason()
	res.Signals = st.gate.Fired()

	st.mu.Lock()
	defer st.mu.Unlock()
	res.Coordinates = st.at
	res.Discovered = st.discovered
	if st.quorum != nil {
		res.QuorumNeed = st.quorum.Need()
		res.Settled = st.quorum.Settled()
	}
}

// Search answers exactly once: when the commute batch and the neighborhood
// quorum have both fired, when the search is forced (geocode failure, nothing
// discovered, MaxWait), plus the settle delay. Work still in flight when the
// snapshot is taken is cancelled. The only error is ctx ending first.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Address: req.Address}
	log := zap.L().With(zap.String("run_id", res.RunID))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := newRun()
	go e.run(runCtx, log, st, req)

	var maxWait <-chan time.Time
	if e.cfg.MaxWait > 0 {
		t := time.NewTimer(e.cfg.MaxWait)
		defer t.Stop()
		maxWait = t.C
	}

	select {
	case <-st.gate.Done():
	case <-maxWait:
		if st.gate.Force(ReasonMaxWait) {
			log.Warn("search: max wait reached", zap.Duration("max_wait", e.cfg.MaxWait))
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if e.cfg.SettleDelay > 0 {
		t := time.NewTimer(e.cfg.SettleDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	st.finish(res)
	cancel()
	res.Duration = time.Since(start)

	log.Info("search: responding",
		zap.String("reason", string(res.Reason)),
		zap.Int("neighborhoods", len(res.Neighborhoods)),
		zap.Int("settled", res.Settled),
		zap.Int("quorum", res.QuorumNeed),
		zap.Int("failed_fields", len(res.Failures())),
		zap.Int64("duration_ms", res.Duration.Milliseconds()),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, log *zap.Logger, st *run, req SearchRequest) {
	at, err := e.providers.Geocoder.Geocode(ctx, req.Address)
	if err != nil {
		log.Warn("search: geocode failed", zap.String("address", req.Address), zap.Error(err))
		st.gate.Force(ReasonGeocodeFailed)
		return
	}

	found := e.discovery.Discover(ctx, at)
	for _, s := range found.Stubs {
		st.set.Add(s)
	}
	stubs := st.set.Stubs()
	log.Info("search: discovery complete",
		zap.Int("neighborhoods", len(stubs)),
		zap.Int("steps", found.Steps),
		zap.Int("failed_steps", found.FailedSteps),
	)
	if len(stubs) == 0 {
		st.discoveredAt(at, 0, nil)
		st.gate.Force(ReasonNoNeighborhoods)
		return
	}

	q := NewQuorum(len(stubs), e.cfg.Quorum)
	st.discoveredAt(at, len(stubs), q)

	go e.commute(ctx, st, at, stubs)
	for _, stub := range stubs {
		go func() {
			e.enrich(ctx, st, stub, req)
			if q.Settle() {
				st.gate.Signal(SignalQuorum)
			}
		}()
	}
}
