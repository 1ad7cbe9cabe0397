// Package emit provides observability backends for a des.Model: an
// Adapter turns the kernel's StatusObserver callbacks into a stream of
// Events, which concrete Observer implementations log, trace, or buffer.
// Grounded on the teacher's graph/emit package (Emitter/Event/NullEmitter
// /LogEmitter/OTelEmitter/BufferedEmitter), generalized from per-node
// workflow events to per-element status changes and per-event dispatch.
package emit

// Event represents one observability event derived from a Model's
// lifecycle: either an element's status change or the executive's
// dispatch of a calendar event.
type Event struct {
	// ModelName identifies which model's replication emitted this event.
	ModelName string

	// Replication is the 1-based replication number, or 0 for an
	// experiment-level event.
	Replication int

	// Time is the simulated time the event occurred at.
	Time float64

	// ElementName identifies which element emitted this event. Empty
	// for executive-level events with no associated element.
	ElementName string

	// EventID is the dispatched calendar event's id, or 0 for a status
	// change rather than a dispatch.
	EventID int64

	// Msg names the kind of event: a status name ("BeforeReplication",
	// "Warmup", ...) or "dispatch".
	Msg string

	// Meta carries additional structured data, e.g. "previous_status".
	Meta map[string]any
}
