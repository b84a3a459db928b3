package events

import (
	"context"
	"delivery-sim-service/internal/domain"
	"sync"
)

// Broker fans simulation events out to in-process subscribers such as
// websocket clients. Slow subscribers miss events instead of blocking runs.
type Broker struct {
	mu   sync.Mutex
	subs map[chan SimulationEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan SimulationEvent]struct{}{}}
}

func (b *Broker) Subscribe() chan SimulationEvent {
	ch := make(chan SimulationEvent, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan SimulationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) PublishSimulation(ctx context.Context, res *domain.SimulationResult) error {
	evt := NewSimulationEvent(res)

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}
