package tree

import (
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/errors"
)

type leaf struct {
	core.Base
	Name string
}

func (leaf) Render() core.Output { return core.Empty() }

type other struct {
	core.Base
	Name string
}

func (other) Render() core.Output { return core.Empty() }

type label struct {
	core.Base
	Text   string
	Struck bool
}

func (label) Render() core.Output { return core.Empty() }

type row struct {
	core.Base
	Text string
	Done bool
}

func (r row) Render() core.Output {
	return core.Single(label{Text: r.Text, Struck: r.Done})
}

type list struct {
	core.Base
	Rows []row
}

func (l list) Render() core.Output { return core.List(l.Rows) }

type pair struct {
	core.Base
	A, B string
}

func (p pair) Render() core.Output {
	return core.Group(leaf{Name: p.A}, leaf{Name: p.B})
}

// shape renders two leaves, the second one wrapped in a nested multi when
// Nested is set.
type shape struct {
	core.Base
	Nested bool
}

func (s shape) Render() core.Output {
	if s.Nested {
		return core.Multi(core.Single(leaf{Name: "a"}), core.Multi(core.Single(leaf{Name: "b"})))
	}
	return core.Group(leaf{Name: "a"}, leaf{Name: "b"})
}

// greeting keeps its data unexported.
type greeting struct {
	core.Base
	name string
}

func (g greeting) Render() core.Output { return core.Single(label{Text: g.name}) }

type broken struct{ core.Base }

func (broken) Render() core.Output { return core.Output{} }

type panicky struct{ core.Base }

func (panicky) Render() core.Output { return core.Empty() }
func (panicky) OnMount()            { panic("boom") }

var flakyRenders int

type flaky struct{ core.Base }

func (flaky) Render() core.Output {
	flakyRenders++
	return core.Single(leaf{Name: strconv.Itoa(flakyRenders)})
}

// counted records its own lifecycle hooks through a shared log.
type counted struct {
	Name string
	Log  *[]string
}

func (counted) Render() core.Output { return core.Empty() }
func (c counted) OnMount()          { *c.Log = append(*c.Log, "mount "+c.Name) }
func (c counted) OnUnmount()        { *c.Log = append(*c.Log, "unmount "+c.Name) }

// recorder collects lifecycle events as "mount row:a" style strings.
type recorder struct {
	events []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnMount:   func(e MountEvent) { r.events = append(r.events, "mount "+describe(e.Component)) },
		OnUnmount: func(e UnmountEvent) { r.events = append(r.events, "unmount "+describe(e.Component)) },
		OnUpdate:  func(e UpdateEvent) { r.events = append(r.events, "update "+describe(e.Component)) },
	}
}

func (r *recorder) take() []string {
	out := r.events
	r.events = nil
	return out
}

func describe(c core.Component) string {
	switch v := c.(type) {
	case leaf:
		return "leaf:" + v.Name
	case other:
		return "other:" + v.Name
	case label:
		return "label:" + v.Text
	case row:
		return "row:" + v.Text
	case list:
		return "list"
	case pair:
		return "pair"
	case shape:
		return "shape"
	default:
		return core.TypeName(c)
	}
}

func rows(texts ...string) list {
	l := list{}
	for _, t := range texts {
		l.Rows = append(l.Rows, row{Text: t})
	}
	return l
}

func quietErrors(t *testing.T) {
	t.Helper()
	errors.SetHandler(&errors.LogHandler{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	t.Cleanup(func() { errors.SetHandler(nil) })
}

func newRecorded(opts ...Option) (*Tree, *recorder) {
	rec := &recorder{}
	opts = append([]Option{WithHooks(rec.hooks())}, opts...)
	return New(opts...), rec
}
