package neighborhood

import (
	"sort"
	"sync"
)

// Signal names an independent completion event the response waits for.
type Signal string

const (
	SignalCommute Signal = "commute"
	SignalQuorum  Signal = "quorum"
)

// Reason records why the response gate opened.
type Reason string

const (
	ReasonComplete        Reason = "complete"
	ReasonGeocodeFailed   Reason = "geocode_failed"
	ReasonNoNeighborhoods Reason = "no_neighborhoods"
	ReasonMaxWait         Reason = "max_wait"
)

// Gate opens once every required signal has fired, or earlier when forced.
// It opens at most once; later signals and forces are ignored.
type Gate struct {
	mu       sync.Mutex
	required map[Signal]bool
	fired    map[Signal]bool
	reason   Reason
	open     bool
	done     chan struct{}
}

func NewGate(required ...Signal) *Gate {
	g := &Gate{
		required: make(map[Signal]bool, len(required)),
		fired:    make(map[Signal]bool, len(required)),
		done:     make(chan struct{}),
	}
	for _, s := range required {
		g.required[s] = true
	}
	return g
}

// Signal marks s as fired. Repeats of the same signal count once. It reports
// whether this call opened the gate.
func (g *Gate) Signal(s Signal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open || !g.required[s] || g.fired[s] {
		return false
	}
	g.fired[s] = true
	if len(g.fired) < len(g.required) {
		return false
	}
	g.openLocked(ReasonComplete)
	return true
}

// Force opens the gate regardless of signals. It reports whether this call
// opened the gate.
func (g *Gate) Force(r Reason) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return false
	}
	g.openLocked(r)
	return true
}

func (g *Gate) openLocked(r Reason) {
	g.open = true
	g.reason = r
	close(g.done)
}

// Done is closed when the gate opens.
func (g *Gate) Done() <-chan struct{} { return g.done }

// Reason is empty until the gate opens.
func (g *Gate) Reason() Reason {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// Fired lists the signals seen before the gate opened.
func (g *Gate) Fired() []Signal {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Signal, 0, len(g.fired))
	for s := range g.fired {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
