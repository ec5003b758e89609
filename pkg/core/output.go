package core

// OutputKind tags the shape of an Output.
type OutputKind uint8

const (
	// OutputInvalid is the zero Output. The engine rejects it.
	OutputInvalid OutputKind = iota
	// OutputSingle holds exactly one component.
	OutputSingle
	// OutputMulti holds an ordered sequence of outputs.
	OutputMulti
)

func (k OutputKind) String() string {
	switch k {
	case OutputSingle:
		return "single"
	case OutputMulti:
		return "multi"
	default:
		return "invalid"
	}
}

// Output is the transient description of desired tree shape produced by
// Component.Render. It is rebuilt on every pass and never retained.
//
// An Output is either Single (one component, one slot) or Multi (zero or more
// sibling outputs, matched by position only). The zero Output is invalid.
type Output struct {
	kind      OutputKind
	component Component
	items     []Output
}

// Single wraps one component.
func Single(c Component) Output {
	return Output{kind: OutputSingle, component: c}
}

// Multi groups outputs into ordered sibling slots.
func Multi(items ...Output) Output {
	return Output{kind: OutputMulti, items: append([]Output(nil), items...)}
}

// Empty returns a Multi with no slots. Leaf components render to Empty.
func Empty() Output {
	return Output{kind: OutputMulti}
}

// Group returns a Multi with one Single slot per component.
func Group(components ...Component) Output {
	items := make([]Output, len(components))
	for i, c := range components {
		items[i] = Single(c)
	}
	return Output{kind: OutputMulti, items: items}
}

// List returns a Multi with one Single slot per element of items.
func List[T Component](items []T) Output {
	out := make([]Output, len(items))
	for i, c := range items {
		out[i] = Single(c)
	}
	return Output{kind: OutputMulti, items: out}
}

// Kind returns the shape tag.
func (o Output) Kind() OutputKind { return o.kind }

// Valid reports whether o is Single or Multi.
func (o Output) Valid() bool { return o.kind == OutputSingle || o.kind == OutputMulti }

// Component returns the component of a Single output, or nil.
func (o Output) Component() Component { return o.component }

// Items returns the slots of a Multi output. The slice must not be modified.
func (o Output) Items() []Output { return o.items }

// Slots returns the child slots a component rendering o occupies: one slot
// for a Single, one slot per item for a Multi, none for an invalid output.
func (o Output) Slots() []Output {
	switch o.kind {
	case OutputSingle:
		return []Output{o}
	case OutputMulti:
		return o.items
	default:
		return nil
	}
}

// OutputEqual reports whether a and b have the same shape and pairwise
// Equal components.
func OutputEqual(a, b Output) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case OutputSingle:
		return Equal(a.component, b.component)
	case OutputMulti:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !OutputEqual(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
