package des

import "sort"

// ConditionalPredicate evaluates whether a registered conditional action
// should fire right now.
type ConditionalPredicate func() bool

// ConditionalAction is executed once its paired predicate returns true.
type ConditionalAction func()

type conditionalPair struct {
	priority int
	seq      int
	name     string
	predicate ConditionalPredicate
	action    ConditionalAction
}

// ConditionalActionProcessor is the bounded, ordered registry of
// predicate/action pairs the Executive scans after every event (the
// "C-phase", spec.md §4.4). Grounded on the Predicate[S]/Edge[S]
// conditional-routing shape in the teacher's graph/edge.go, generalized
// from "evaluate state, pick an edge" to "evaluate state, run an
// arbitrary action, possibly several times per scan cycle".
type ConditionalActionProcessor struct {
	pairs       []conditionalPair
	nextSeq     int
	MaxScans    int // 0 uses DefaultMaxConditionalScans; negative disables the guard
}

// NewConditionalActionProcessor returns a processor using
// DefaultMaxConditionalScans as its scan guard.
func NewConditionalActionProcessor() *ConditionalActionProcessor {
	return &ConditionalActionProcessor{MaxScans: DefaultMaxConditionalScans}
}

// Register adds a predicate/action pair, ordered by priority (lower runs
// first within a scan), then by registration order.
func (p *ConditionalActionProcessor) Register(name string, priority int, predicate ConditionalPredicate, action ConditionalAction) {
	p.pairs = append(p.pairs, conditionalPair{
		priority:  priority,
		seq:       p.nextSeq,
		name:      name,
		predicate: predicate,
		action:    action,
	})
	p.nextSeq++
	sort.SliceStable(p.pairs, func(i, j int) bool {
		if p.pairs[i].priority != p.pairs[j].priority {
			return p.pairs[i].priority < p.pairs[j].priority
		}
		return p.pairs[i].seq < p.pairs[j].seq
	})
}

// Clear removes every registered pair. Called at replication
// initialization so stale conditional actions from a prior replication
// never fire.
func (p *ConditionalActionProcessor) Clear() {
	p.pairs = nil
	p.nextSeq = 0
}

// Len reports how many pairs are currently registered.
func (p *ConditionalActionProcessor) Len() int { return len(p.pairs) }

// Run repeatedly walks the registered pairs, executing the action of any
// whose predicate returns true, until a full scan fires nothing. It
// returns ErrTooManyScans if the guard is exceeded (spec.md §4.4).
func (p *ConditionalActionProcessor) Run() error {
	maxScans := p.MaxScans
	if maxScans == 0 {
		maxScans = DefaultMaxConditionalScans
	}
	scans := 0
	for {
		if maxScans > 0 && scans >= maxScans {
			return ErrTooManyScans
		}
		scans++
		fired := false
		for i := range p.pairs {
			if p.pairs[i].predicate == nil {
				continue
			}
			if p.pairs[i].predicate() {
				fired = true
				if p.pairs[i].action != nil {
					p.pairs[i].action()
				}
			}
		}
		if !fired {
			return nil
		}
	}
}
