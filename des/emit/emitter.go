package emit

import (
	"context"

	"github.com/desgo/kernel/des"
)

// Observer receives Events from an Adapter. Implementations should be
// non-blocking and must never panic — a failing observability backend
// must never take down a replication (spec.md §6 "Status observer...
// must not be allowed to corrupt kernel state").
type Observer interface {
	Emit(event Event)
	EmitBatch(ctx context.Context, events []Event) error
	Flush(ctx context.Context) error
}

// Adapter implements des.StatusObserver by forwarding every status
// change and event dispatch to an Observer, tagged with the model and
// replication number it came from. Attach one per Model via
// Model.AddStatusObserver / Executive.AddObserver.
type Adapter struct {
	ModelName string
	Observer  Observer

	// Replication is read at emit time; callers update it (e.g. from a
	// BeforeReplication hook) as replications advance.
	Replication int
}

// NewAdapter returns an Adapter forwarding to obs, labelled modelName.
func NewAdapter(modelName string, obs Observer) *Adapter {
	return &Adapter{ModelName: modelName, Observer: obs}
}

func (a *Adapter) OnStatusChange(elem des.Element, previous, current des.Status) {
	name := ""
	if elem != nil {
		name = elem.Name()
	}
	a.Observer.Emit(Event{
		ModelName:   a.ModelName,
		Replication: a.Replication,
		ElementName: name,
		Msg:         current.String(),
		Meta:        map[string]any{"previous_status": previous.String()},
	})
}

func (a *Adapter) OnEvent(exec *des.Executive, evt *des.Event) {
	name := ""
	if evt.Element != nil {
		name = evt.Element.Name()
	}
	a.Observer.Emit(Event{
		ModelName:   a.ModelName,
		Replication: a.Replication,
		Time:        evt.Time,
		ElementName: name,
		EventID:     evt.ID,
		Msg:         "dispatch",
		Meta:        map[string]any{"event_name": evt.Name},
	})
}
