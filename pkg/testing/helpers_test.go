package testing

import (
	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/reduce"
)

type push struct{ Name string }

type pop struct{}

type stack struct{ Names []string }

func (s stack) Reduce(ev reduce.Event) stack {
	switch e := ev.(type) {
	case push:
		return stack{Names: append(append([]string(nil), s.Names...), e.Name)}
	case pop:
		if len(s.Names) == 0 {
			return s
		}
		return stack{Names: append([]string(nil), s.Names[:len(s.Names)-1]...)}
	}
	return s
}

type frame struct {
	core.Base
	Name string
}

func (frame) Render() core.Output { return core.Empty() }

type column struct {
	core.Base
	Names []string
}

func (c column) Render() core.Output {
	frames := make([]frame, len(c.Names))
	for i, n := range c.Names {
		frames[i] = frame{Name: n}
	}
	return core.List(frames)
}

func viewStack(s stack) core.Output {
	return core.Single(column{Names: s.Names})
}

var impureRenders int

// impure renders differently every time it is asked.
type impure struct{ core.Base }

func (impure) Render() core.Output {
	impureRenders++
	if impureRenders%2 == 0 {
		return core.Empty()
	}
	return core.Group(frame{Name: "odd"})
}

type impureState struct{}

func (s impureState) Reduce(reduce.Event) impureState { return s }

func viewImpure(impureState) core.Output { return core.Single(impure{}) }
