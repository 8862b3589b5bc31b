// Package events carries search.completed notifications from the handlers to
// background consumers.
package events

import (
	"context"
	"time"
)

// SearchCompleted describes one finished neighborhood search.
type SearchCompleted struct {
	RunID         string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Neighborhoods int
	Reason        string
	Failures      int
	Duration      time.Duration
}

type Publisher interface {
	PublishSearchCompleted(ctx context.Context, evt SearchCompleted)
	SubscribeSearchCompleted() <-chan SearchCompleted
}

type inMemory struct{ ch chan SearchCompleted }

// NewInMemory returns a buffered publisher that drops events when the buffer
// is full.
func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan SearchCompleted, buffer)}
}

func (m *inMemory) PublishSearchCompleted(_ context.Context, evt SearchCompleted) {
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) SubscribeSearchCompleted() <-chan SearchCompleted { return m.ch }
