package des

import (
	"strings"

	"github.com/google/uuid"
)

// ConfigurationManager is an optional collaborator invoked once per
// experiment, after parameter/control application (spec.md §6
// "Configuration manager"). ConfigurationManagerFunc adapts a plain
// function, following the teacher's NodeFunc[S] adapter pattern
// (graph/node.go).
type ConfigurationManager interface {
	Configure(model *Model, controls map[string]string) error
}

// ConfigurationManagerFunc adapts a function to ConfigurationManager.
type ConfigurationManagerFunc func(model *Model, controls map[string]string) error

func (f ConfigurationManagerFunc) Configure(model *Model, controls map[string]string) error {
	return f(model, controls)
}

// Model is the root of the element tree and owner of the per-model
// arena, calendar, executive, and replication controller (spec.md §3
// "Model (root element)"). Per the arena re-architecture in spec.md §9,
// Model — not individual elements — owns parent/child relationships as
// id lists, keyed by stable per-model integer ids; elements hold only
// their own id and a back-reference to the Model.
type Model struct {
	ElementBase
	BaseHooks

	SimulationName  string
	OutputDirectory string
	BaseTimeUnit    float64 // conversion factor only; never used in time comparisons (spec.md §9)

	Params *ExperimentParams

	Stream StreamProvider

	Executive  *Executive
	Controller *ReplicationController

	configManager ConfigurationManager

	nextID int64

	elements   map[int64]Element
	idByName   map[string]int64
	parent     map[int64]int64 // child id -> parent id; root id is its own parent
	children   map[int64][]int64

	running bool
}

// NewModel constructs a root Model. simulationName is sanitized into the
// root element's own name (dots are not permitted in element names,
// spec.md §3 "dot character disallowed or substituted").
func NewModel(simulationName, outputDirectory string, opts ...ModelOption) *Model {
	m := &Model{
		SimulationName:  simulationName,
		OutputDirectory: outputDirectory,
		BaseTimeUnit:    1.0,
		Params:          DefaultExperimentParams(),
		Stream:          nil,
		elements:        make(map[int64]Element),
		idByName:        make(map[string]int64),
		parent:          make(map[int64]int64),
		children:        make(map[int64][]int64),
		nextID:          1,
	}
	m.Executive = NewExecutive()

	rootID := m.nextID
	m.nextID++
	m.ElementBase = *newElementBase(rootID, sanitizeName(simulationName), m)
	m.elements[rootID] = m
	m.idByName[m.ElementBase.name] = rootID
	m.parent[rootID] = rootID

	m.Controller = NewReplicationController(m)

	for _, opt := range opts {
		opt(m)
	}
	if m.Params.ExperimentID == "" {
		m.Params.ExperimentID = uuid.NewString()
	}
	return m
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// IsRunning reports whether a replication is currently executing. Model
// structure (Add/Remove) may not change while this is true (spec.md §3
// "adding/removing elements is forbidden while isRunning").
func (m *Model) IsRunning() bool { return m.running }

// Element looks an element up by its model-unique name.
func (m *Model) Element(name string) (Element, bool) {
	id, ok := m.idByName[name]
	if !ok {
		return nil, false
	}
	e, ok := m.elements[id]
	return e, ok
}

// ElementByID looks an element up by its stable integer id.
func (m *Model) ElementByID(id int64) (Element, bool) {
	e, ok := m.elements[id]
	return e, ok
}

// Count returns the number of elements currently registered, including
// the root model itself.
func (m *Model) Count() int { return len(m.elements) }

func (m *Model) parentOf(id int64) Element {
	pid, ok := m.parent[id]
	if !ok || pid == id {
		return nil
	}
	return m.elements[pid]
}

func (m *Model) childrenOf(id int64) []Element {
	ids := m.children[id]
	out := make([]Element, 0, len(ids))
	for _, cid := range ids {
		out = append(out, m.elements[cid])
	}
	return out
}

// Add registers a new element as a child of parent (or of the root model
// if parent is nil), assigning it a fresh id and inserting it into the
// name map. name must be unique within the model. Add fails with a
// StateError while the model is running, and a PreconditionError on a
// duplicate name (spec.md §4.6 "Name uniqueness").
//
// construct is called with the freshly allocated *ElementBase, which the
// caller embeds into the concrete Element value it returns; this mirrors
// the two-phase construction the arena re-architecture requires (the id
// must exist before the element can reference it).
func Add[T Element](m *Model, parent Element, name string, construct func(base *ElementBase) T) (T, error) {
	var zero T
	if m.running {
		return zero, newStateError("MODEL_RUNNING", "cannot add element %q while running", name)
	}
	name = sanitizeName(name)
	if _, exists := m.idByName[name]; exists {
		return zero, newPrecondition("DUPLICATE_NAME", "element name %q already exists", name)
	}
	if parent == nil {
		parent = m
	}
	if _, ok := m.elements[parent.ID()]; !ok {
		return zero, newPrecondition("UNKNOWN_PARENT", "parent %q is not registered with this model", parent.Name())
	}

	id := m.nextID
	m.nextID++
	base := newElementBase(id, name, m)
	elem := construct(base)

	m.elements[id] = elem
	m.idByName[name] = id
	m.parent[id] = parent.ID()
	m.children[parent.ID()] = append(m.children[parent.ID()], id)

	base.setStatus(elem, StatusModelElementAdded)
	return elem, nil
}

// Remove detaches an element (and, recursively, its subtree) from the
// model (spec.md §4.6 "Removal"). It fails with a StateError while the
// model is running.
func (m *Model) Remove(elem Element) error {
	if m.running {
		return newStateError("MODEL_RUNNING", "cannot remove %q while running", elem.Name())
	}
	if elem.ID() == m.ID() {
		return newPrecondition("CANNOT_REMOVE_ROOT", "the root model cannot be removed")
	}
	if _, ok := m.elements[elem.ID()]; !ok {
		return newPrecondition("UNKNOWN_ELEMENT", "element %q is not registered with this model", elem.Name())
	}
	m.removeSubtree(elem)
	return nil
}

func (m *Model) removeSubtree(elem Element) {
	id := elem.ID()
	for _, childID := range append([]int64(nil), m.children[id]...) {
		if child, ok := m.elements[childID]; ok {
			m.removeSubtree(child)
		}
	}

	if base := elementBaseOf(elem); base != nil {
		base.cancelWarmUpAndTimedUpdate()
	}
	elem.RemovedFromModel()

	if base := elementBaseOf(elem); base != nil {
		base.setStatus(elem, StatusRemovedFromModel)
		base.observers = nil
	}

	parentID := m.parent[id]
	m.children[parentID] = removeID(m.children[parentID], id)
	delete(m.parent, id)
	delete(m.children, id)
	delete(m.elements, id)
	delete(m.idByName, elem.Name())
}

func removeID(ids []int64, target int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// elementBaseOf extracts *ElementBase from an Element when the caller
// needs tree-internal bookkeeping (status/observer fields) the public
// interface deliberately doesn't expose. Every Element the arena holds
// is required to embed ElementBase, so this type assertion always
// succeeds for elements that came from Add or NewModel.
func elementBaseOf(elem Element) *ElementBase {
	if b, ok := elem.(interface{ asElementBase() *ElementBase }); ok {
		return b.asElementBase()
	}
	return nil
}

func (e *ElementBase) asElementBase() *ElementBase { return e }

// PreOrder returns every element in the model, visited root first then
// each child subtree in insertion order, recursively (spec.md §4.6
// "Traversal").
func (m *Model) PreOrder() []Element {
	var out []Element
	var walk func(Element)
	walk = func(e Element) {
		out = append(out, e)
		for _, c := range m.childrenOf(e.ID()) {
			walk(c)
		}
	}
	walk(m)
	return out
}

// assignTraversalCounts sets leftCount/rightCount on every element via a
// classic pre-order interval numbering (spec.md §4.5 setUpExperiment
// step 2: "assigning left/right traversal counts").
func (m *Model) assignTraversalCounts() {
	counter := 0
	var walk func(Element)
	walk = func(e Element) {
		counter++
		base := elementBaseOf(e)
		left := counter
		for _, c := range m.childrenOf(e.ID()) {
			walk(c)
		}
		counter++
		if base != nil {
			base.leftCount, base.rightCount = left, counter
		}
	}
	walk(m)
}
