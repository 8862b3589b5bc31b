package neighborhood

import (
	"math"
	"sync"
)

// DefaultQuorum is the fraction of neighborhoods that must finish enrichment
// before a search is considered done enough.
const DefaultQuorum = 0.8

// Quorum is an N-of-M barrier. Settle is called once per finished task and
// reports true exactly once, on the call that reaches the threshold.
type Quorum struct {
	mu      sync.Mutex
	need    int
	settled int
	reached bool
}

// NewQuorum needs ceil(fraction*total) settlements, at least one and at most
// total. Fractions outside (0, 1] are treated as 1.
func NewQuorum(total int, fraction float64) *Quorum {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	// the epsilon absorbs float error such as 0.8*5 = 4.000000000000001
	need := int(math.Ceil(fraction*float64(total) - 1e-9))
	if need < 1 {
		need = 1
	}
	if need > total && total > 0 {
		need = total
	}
	return &Quorum{need: need}
}

func (q *Quorum) Need() int { return q.need }

func (q *Quorum) Settled() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.settled
}

func (q *Quorum) Settle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.settled++
	if q.reached || q.settled < q.need {
		return false
	}
	q.reached = true
	return true
}
