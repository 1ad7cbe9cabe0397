package emit

import (
	"context"
	"sync"
)

// BufferedObserver stores every event in memory, keyed by model name,
// for tests and post-run inspection.
type BufferedObserver struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// NewBufferedObserver returns an empty, concurrency-safe BufferedObserver.
func NewBufferedObserver() *BufferedObserver {
	return &BufferedObserver{events: make(map[string][]Event)}
}

func (b *BufferedObserver) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.ModelName] = append(b.events[event.ModelName], event)
}

func (b *BufferedObserver) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		b.Emit(e)
	}
	return nil
}

func (b *BufferedObserver) Flush(context.Context) error { return nil }

// History returns a copy of every event recorded for modelName, in
// emission order.
func (b *BufferedObserver) History(modelName string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	events := b.events[modelName]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// Clear discards events for modelName, or everything if modelName is empty.
func (b *BufferedObserver) Clear(modelName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if modelName == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, modelName)
}
