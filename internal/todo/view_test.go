package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/flow/pkg/core"
	flowtest "github.com/go-drift/flow/pkg/testing"
	"github.com/go-drift/flow/pkg/tree"
)

func TestViewStructure(t *testing.T) {
	tester := flowtest.NewTester(t, App{Todos: Todos{{Text: "a"}, {Text: "b", Completed: true}}}, View)
	require.NoError(t, tester.Render())

	assert.Equal(t, 1, tester.Find(flowtest.ByType[TodoList]()).Count())
	assert.Equal(t, 2, tester.Find(flowtest.ByType[TodoRow]()).Count())
	assert.Equal(t, 3, tester.Find(flowtest.ByType[FilterButton]()).Count())

	selected := tester.Find(flowtest.ByValue(FilterButton{Filter: ShowAll, Selected: true}))
	assert.Equal(t, tree.Path{1, 0}, selected.Path())
}

// An empty list gains one row: only that row mounts.
func TestAddTodoMountsOneRow(t *testing.T) {
	tester := flowtest.NewTester(t, App{}, View)
	require.NoError(t, tester.Render())
	tester.Recorder().Reset()

	require.NoError(t, tester.Step(AddTodo{Text: "buy milk"}))

	rec := tester.Recorder()
	assert.Equal(t, 1, rec.Count(flowtest.Mount))
	assert.Equal(t, 0, rec.Count(flowtest.Unmount))
	assert.Equal(t, []string{
		"update todo.AppView /",
		"update todo.TodoList /0",
		"mount todo.TodoRow /0/0",
		"skip todo.FilterBar /1",
		"skip todo.InputBox /2",
	}, rec.Strings())

	row := tester.Find(flowtest.ByType[TodoRow]()).Component()
	assert.Equal(t, TodoRow{Text: "buy milk"}, row)
}

func TestAddTodoOnEmptyTree(t *testing.T) {
	app := App{}.Reduce(AddTodo{Text: "buy milk"})
	out := AppView{Todos: app.Todos}.Render().Items()[0].Component().Render()
	require.True(t, core.OutputEqual(core.Multi(core.Single(TodoRow{Text: "buy milk"})), out))

	tr := tree.New()
	stats, err := tr.Update(out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Mounted)
	assert.Equal(t, 0, stats.Unmounted)
}

// Toggling the second of two rows updates it in place and skips the first.
func TestToggleUpdatesRowInPlace(t *testing.T) {
	tester := flowtest.NewTester(t, App{Todos: Todos{{Text: "a"}, {Text: "b"}}}, View)
	require.NoError(t, tester.Render())
	tester.Recorder().Reset()

	require.NoError(t, tester.Step(ToggleTodo{Index: 1}))

	rec := tester.Recorder()
	assert.Equal(t, 0, rec.Churn())
	assert.Equal(t, []string{
		"update todo.AppView /",
		"update todo.TodoList /0",
		"skip todo.TodoRow /0/0",
		"update todo.TodoRow /0/1",
		"skip todo.FilterBar /1",
		"skip todo.InputBox /2",
	}, rec.Strings())
	tester.Snapshot().MatchesGolden(t, "toggle")
}

func TestFilterHidesRows(t *testing.T) {
	start := App{Todos: Todos{{Text: "a"}, {Text: "b", Completed: true}}}
	tester := flowtest.NewTester(t, start, View)
	require.NoError(t, tester.Render())
	tester.Recorder().Reset()

	require.NoError(t, tester.Step(SetFilter{Filter: ShowCompleted}))

	rows := tester.Find(flowtest.ByType[TodoRow]())
	require.Equal(t, 1, rows.Count())
	assert.Equal(t, TodoRow{Text: "b", Completed: true, Index: 1}, rows.Component())
	// Rows match by position: "a" at slot 0 is updated into "b", the
	// second slot unmounts.
	assert.Equal(t, 1, tester.Recorder().Count(flowtest.Unmount))
	assert.Equal(t, 0, tester.Recorder().Count(flowtest.Mount))

	require.NoError(t, tester.Step(ToggleTodo{Index: 1}))
	assert.False(t, tester.Find(flowtest.ByType[TodoRow]()).Exists())
	tester.Snapshot().MatchesGolden(t, "filtered_empty")
}

func TestInputRoundTrip(t *testing.T) {
	tester := flowtest.NewTester(t, App{}, View)
	require.NoError(t, tester.Step(EditInput{Text: "bread"}))

	box := tester.Find(flowtest.ByType[InputBox]()).Component()
	assert.Equal(t, InputBox{Text: "bread"}, box)

	require.NoError(t, tester.Step(SubmitInput{}))
	assert.Equal(t, InputBox{}, tester.Find(flowtest.ByType[InputBox]()).Component())
	assert.Equal(t, TodoRow{Text: "bread"}, tester.Find(flowtest.ByType[TodoRow]()).Component())
	assert.Empty(t, tester.Reported())
}
