package emit

import "context"

// NullObserver discards every event. Use it to disable observability
// without changing call sites.
type NullObserver struct{}

// NewNullObserver returns an Observer that discards everything.
func NewNullObserver() *NullObserver { return &NullObserver{} }

func (NullObserver) Emit(Event) {}

func (NullObserver) EmitBatch(context.Context, []Event) error { return nil }

func (NullObserver) Flush(context.Context) error { return nil }
