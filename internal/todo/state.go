// Package todo is the example application: a todo list with a visibility
// filter and a text input, composed from three independently reduced
// sub-states.
package todo

import (
	"fmt"
	"strings"

	"github.com/go-drift/flow/pkg/reduce"
)

// Todo is one entry of the list.
type Todo struct {
	Text      string
	Completed bool
}

// Events.
type (
	// AddTodo appends an active todo.
	AddTodo struct {
		Text string `mapstructure:"text"`
	}
	// ToggleTodo flips the completion of the todo at Index. Indexes outside
	// the list are ignored.
	ToggleTodo struct {
		Index int `mapstructure:"index"`
	}
	// Nothing is recognized by the todo list and changes nothing.
	Nothing struct{}
	// SetFilter selects which todos are visible.
	SetFilter struct {
		Filter Filter `mapstructure:"filter"`
	}
	// EditInput replaces the text of the input box.
	EditInput struct {
		Text string `mapstructure:"text"`
	}
	// SubmitInput adds the input text as a todo and clears the input. Blank
	// input is discarded.
	SubmitInput struct{}
)

// Todos is the todo list sub-state. Reduce never modifies the receiver's
// backing array.
type Todos []Todo

var reduceTodos = reduce.Cases(
	reduce.On(func(t Todos, e AddTodo) Todos {
		next := make(Todos, len(t), len(t)+1)
		copy(next, t)
		return append(next, Todo{Text: e.Text})
	}),
	reduce.On(func(t Todos, e ToggleTodo) Todos {
		if e.Index < 0 || e.Index >= len(t) {
			return t
		}
		next := append(Todos(nil), t...)
		next[e.Index].Completed = !next[e.Index].Completed
		return next
	}),
	reduce.On(func(t Todos, _ Nothing) Todos { return t }),
)

func (t Todos) Reduce(ev reduce.Event) Todos { return reduceTodos(t, ev) }

// Filter is the visibility filter sub-state.
type Filter int

const (
	ShowAll Filter = iota
	ShowCompleted
	ShowActive
)

// Filters lists every filter in display order.
var Filters = []Filter{ShowAll, ShowCompleted, ShowActive}

func (f Filter) String() string {
	switch f {
	case ShowCompleted:
		return "completed"
	case ShowActive:
		return "active"
	default:
		return "all"
	}
}

// ParseFilter is the inverse of Filter.String.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return ShowAll, fmt.Errorf("unknown filter %q", s)
}

// Match reports whether t is visible under f.
func (f Filter) Match(t Todo) bool {
	switch f {
	case ShowCompleted:
		return t.Completed
	case ShowActive:
		return !t.Completed
	default:
		return true
	}
}

func (f Filter) Reduce(ev reduce.Event) Filter {
	if e, ok := ev.(SetFilter); ok {
		return e.Filter
	}
	return f
}

// Input is the text input sub-state.
type Input string

var reduceInput = reduce.Cases(
	reduce.On(func(_ Input, e EditInput) Input { return Input(e.Text) }),
	reduce.On(func(Input, SubmitInput) Input { return "" }),
)

func (in Input) Reduce(ev reduce.Event) Input { return reduceInput(in, ev) }

// App is the composite application state.
type App struct {
	Todos  Todos
	Filter Filter
	Input  Input
}

var reduceApp = reduce.Broadcast[App](
	todosPart,
	reduce.Child(
		func(a App) Filter { return a.Filter },
		func(a *App, f Filter) { a.Filter = f },
	),
	reduce.Child(
		func(a App) Input { return a.Input },
		func(a *App, in Input) { a.Input = in },
	),
)

// todosPart reduces the list, turning a submit into an AddTodo of the input
// text as it was before the event.
func todosPart(next *App, old App, ev reduce.Event) {
	if _, ok := ev.(SubmitInput); ok {
		text := strings.TrimSpace(string(old.Input))
		if text == "" {
			next.Todos = old.Todos
			return
		}
		ev = AddTodo{Text: text}
	}
	next.Todos = old.Todos.Reduce(ev)
}

func (a App) Reduce(ev reduce.Event) App { return reduceApp(a, ev) }
