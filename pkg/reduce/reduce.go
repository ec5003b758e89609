// Package reduce composes state transitions out of independently owned
// sub-states.
//
// Every event is offered to every layer of the composite. A layer matches
// the event's concrete type and either returns a new value or returns
// itself unchanged; an unrecognized event is never an error and is never
// consumed.
//
//	type Counter int
//
//	func (c Counter) Reduce(ev reduce.Event) Counter {
//	    return reduce.On(func(c Counter, _ Increment) Counter { return c + 1 })(c, ev)
//	}
//
// Composite states assemble their Reduce from parts with Broadcast. Each part
// reads its slice from the old value and writes its new slice into the
// result, so the order of parts cannot be observed.
package reduce

// Event is an opaque value broadcast to every state layer.
type Event any

// State is a value that produces its successor for an event.
type State[S any] interface {
	Reduce(ev Event) S
}

// Func is a transition function for state S.
type Func[S any] func(s S, ev Event) S

// On returns a rule that handles events of concrete type E and returns the
// state unchanged for every other event.
func On[E any, S any](fn func(s S, ev E) S) Func[S] {
	return func(s S, ev Event) S {
		if e, ok := ev.(E); ok {
			return fn(s, e)
		}
		return s
	}
}

// Cases chains the rules of one layer; each rule receives the result of the
// previous one. Rules built with On for distinct event types never both
// fire.
func Cases[S any](rules ...Func[S]) Func[S] {
	return func(s S, ev Event) S {
		for _, rule := range rules {
			s = rule(s, ev)
		}
		return s
	}
}

// Part is one independently owned slice of a composite S. It reads from
// old and writes only its own slice of next.
type Part[S any] func(next *S, old S, ev Event)

// Child lifts a sub-state implementing State into a Part using a getter and
// a setter for its slice of S.
func Child[S any, C State[C]](get func(S) C, set func(*S, C)) Part[S] {
	return func(next *S, old S, ev Event) {
		set(next, get(old).Reduce(ev))
	}
}

// Field lifts a slice of S reduced by fn into a Part.
func Field[S any, C any](get func(S) C, set func(*S, C), fn Func[C]) Part[S] {
	return func(next *S, old S, ev Event) {
		set(next, fn(get(old), ev))
	}
}

// Broadcast returns the reducer of a composite: every part sees the same
// event and the same old value. Parts must own disjoint slices of S.
func Broadcast[S any](parts ...Part[S]) Func[S] {
	return func(old S, ev Event) S {
		next := old
		for _, part := range parts {
			part(&next, old, ev)
		}
		return next
	}
}

// Apply folds events into s in order.
func Apply[S State[S]](s S, events ...Event) S {
	for _, ev := range events {
		s = s.Reduce(ev)
	}
	return s
}
