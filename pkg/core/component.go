package core

import (
	"reflect"
	"sync"
	"time"

	"github.com/mohae/deepcopy"
)

// Component is a value carrying both data and the logic to project that data
// into an Output. Components are immutable descriptions: the engine renders
// them freely, compares them structurally, and keeps duplicates around to
// unmount later.
//
// The variant of a component is its concrete Go type. Two components with the
// same variant and equal fields are interchangeable as far as reconciliation
// is concerned.
type Component interface {
	// Render projects the component into an Output. It must be a pure
	// function of the component's fields.
	Render() Output
	// OnMount is called once when the component enters the tree.
	OnMount()
	// OnUnmount is called once when the component leaves the tree.
	OnUnmount()
}

// Equaler lets a component override structural equality. Equal is only
// consulted when other has the same variant as the receiver.
type Equaler interface {
	Equal(other Component) bool
}

// Duplicator lets a component provide its own deep copy. The default copy
// only sees exported fields, so pointer components holding unexported state
// must implement it.
type Duplicator interface {
	Duplicate() Component
}

// Base provides no-op lifecycle hooks. Embed it in a component struct to
// satisfy Component without boilerplate:
//
//	type Greeting struct {
//	    core.Base
//	    Name string
//	}
//
//	func (g Greeting) Render() core.Output { return core.Empty() }
type Base struct{}

// OnMount does nothing.
func (Base) OnMount() {}

// OnUnmount does nothing.
func (Base) OnUnmount() {}

// SameVariant reports whether a and b have the same concrete type.
func SameVariant(a, b Component) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

// Equal reports whether a and b are the same variant with equal fields.
// Different variants are never equal; this is not an error.
func Equal(a, b Component) bool {
	if !SameVariant(a, b) {
		return false
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// Duplicate returns an independent copy of c with the same variant.
//
// A Duplicator supplies its own copy. Otherwise exported state is deep
// copied. A non-pointer variant with unexported state is returned as is:
// the interface already holds a private copy of the value, and a deep copy
// would zero the fields it cannot see.
func Duplicate(c Component) Component {
	if c == nil {
		return nil
	}
	if d, ok := c.(Duplicator); ok {
		return d.Duplicate()
	}
	t := reflect.TypeOf(c)
	if hidesState(t) {
		return c
	}
	dup, ok := deepcopy.Copy(c).(Component)
	if !ok {
		return c
	}
	return dup
}

// Duplicable reports whether Duplicate yields a faithful copy of c. It is
// false only for pointer variants with unexported state and no Duplicator.
func Duplicable(c Component) bool {
	if c == nil {
		return false
	}
	if _, ok := c.(Duplicator); ok {
		return true
	}
	t := reflect.TypeOf(c)
	return t.Kind() != reflect.Pointer || !hidesState(t)
}

var (
	hiddenMu    sync.RWMutex
	hiddenState = map[reflect.Type]bool{}
	timeType    = reflect.TypeOf(time.Time{})
)

// hidesState reports whether values of t reach unexported struct fields.
func hidesState(t reflect.Type) bool {
	hiddenMu.RLock()
	hidden, ok := hiddenState[t]
	hiddenMu.RUnlock()
	if ok {
		return hidden
	}
	hidden = reachesUnexported(t, map[reflect.Type]bool{})
	hiddenMu.Lock()
	hiddenState[t] = hidden
	hiddenMu.Unlock()
	return hidden
}

func reachesUnexported(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return reachesUnexported(t.Elem(), seen)
	case reflect.Map:
		return reachesUnexported(t.Key(), seen) || reachesUnexported(t.Elem(), seen)
	case reflect.Struct:
		// deepcopy copies time.Time whole.
		if t == timeType {
			return false
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || reachesUnexported(f.Type, seen) {
				return true
			}
		}
	}
	return false
}

// TypeName returns the variant tag of c, e.g. "todo.TodoRow".
func TypeName(c Component) string {
	if c == nil {
		return "<nil>"
	}
	return reflect.TypeOf(c).String()
}
