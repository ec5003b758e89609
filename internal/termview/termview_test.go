package termview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/flow/internal/todo"
	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/engine"
	flowtest "github.com/go-drift/flow/pkg/testing"
)

func newTodoEngine(t *testing.T, b *Backend, app todo.App) *engine.Engine[todo.App] {
	t.Helper()
	eng := engine.New(app, todo.View, b.Mount, engine.WithHooks(b.Hooks()))
	require.NoError(t, eng.Render())
	return eng
}

func TestMountCreatesResourcePerNode(t *testing.T) {
	b := New()
	eng := newTodoEngine(t, b, todo.App{Todos: todo.Todos{{Text: "a"}}})

	assert.Equal(t, eng.Tree().Len(), b.Len())

	rowID := flowtest.Find(eng.Tree(), flowtest.ByType[todo.TodoRow]()).First()
	row, ok := b.Resource(rowID)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, "[ ] a", row.Label)
	assert.Equal(t, 5*7, row.Width)

	require.NotNil(t, row.Parent)
	listID := flowtest.Find(eng.Tree(), flowtest.ByType[todo.TodoList]()).First()
	assert.Equal(t, listID, row.Parent.Node)
	assert.Equal(t, 1, row.Depth())
	require.NotNil(t, row.Parent.Parent)
	assert.Nil(t, row.Parent.Parent.Parent)
}

func TestResourceIDsAreUnique(t *testing.T) {
	b := New()
	eng := newTodoEngine(t, b, todo.App{Todos: todo.Todos{{Text: "a"}, {Text: "b"}}})

	seen := map[uuid.UUID]bool{}
	for _, id := range flowtest.Find(eng.Tree(), flowtest.ByPredicate("any", func(core.Component) bool { return true })).All() {
		r, ok := b.Resource(id)
		require.True(t, ok)
		assert.False(t, seen[r.ID], "duplicate resource id %s", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, seen, b.Len())
}

func TestUpdateAndUnmountKeepResourcesInStep(t *testing.T) {
	var n byte
	b := New(WithIDSource(func() uuid.UUID {
		n++
		return uuid.UUID{15: n}
	}))
	eng := newTodoEngine(t, b, todo.App{Todos: todo.Todos{{Text: "a"}, {Text: "b"}}})
	before := b.Len()

	rowID := flowtest.Find(eng.Tree(), flowtest.ByType[todo.TodoRow]()).At(1)
	row, _ := b.Resource(rowID)
	id := row.ID

	require.NoError(t, eng.Step(todo.ToggleTodo{Index: 1}))
	row, ok := b.Resource(rowID)
	require.True(t, ok)
	assert.Equal(t, id, row.ID, "update keeps the resource")
	assert.Equal(t, "[x] b", row.Label)
	assert.True(t, row.CrossedOut)

	require.NoError(t, eng.Step(todo.SetFilter{Filter: todo.ShowActive}))
	assert.Equal(t, before-1, b.Len())
	_, ok = b.Resource(rowID)
	assert.False(t, ok)
}

func TestRenderAscii(t *testing.T) {
	b := New()
	eng := newTodoEngine(t, b, todo.App{
		Todos: todo.Todos{{Text: "a"}, {Text: "b", Completed: true}},
		Input: "mil",
	})

	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf, eng.Tree()))
	assert.Equal(t, strings.Join([]string{
		"todos",
		"  [ ] a",
		"  [x] b",
		"  filter:",
		"    all",
		"    completed",
		"    active",
		"  > mil",
		"",
	}, "\n"), buf.String())
	assert.Equal(t, (4+len("completed"))*7, b.Width(eng.Tree()))
}

func TestRenderStyled(t *testing.T) {
	b := New(WithProfile(termenv.ANSI))
	eng := newTodoEngine(t, b, todo.App{Todos: todo.Todos{{Text: "b", Completed: true}}})

	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf, eng.Tree()))
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, termenv.CSI+termenv.CrossOutSeq)
	assert.Contains(t, out, termenv.CSI+termenv.BoldSeq)
}
