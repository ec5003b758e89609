package todo

import (
	"strings"

	"github.com/go-drift/flow/pkg/core"
)

// View projects the application state into the root output.
func View(a App) core.Output {
	return core.Single(AppView{
		Todos:  append([]Todo(nil), a.Todos...),
		Filter: a.Filter,
		Input:  string(a.Input),
	})
}

// AppView lays out the list, the filter bar and the input box.
type AppView struct {
	core.Base
	Todos  []Todo
	Filter Filter
	Input  string
}

func (v AppView) Render() core.Output {
	var rows []TodoRow
	for i, t := range v.Todos {
		if v.Filter.Match(t) {
			rows = append(rows, TodoRow{Text: t.Text, Completed: t.Completed, Index: i})
		}
	}
	return core.Group(
		TodoList{Rows: rows},
		FilterBar{Selected: v.Filter},
		InputBox{Text: v.Input},
	)
}

func (AppView) Label() string { return "todos" }

// TodoList renders one row per visible todo.
type TodoList struct {
	core.Base
	Rows []TodoRow
}

func (l TodoList) Render() core.Output { return core.List(l.Rows) }

// TodoRow is a visible todo. Index is its position in the unfiltered list,
// so a toggle targets the right entry under any filter.
type TodoRow struct {
	core.Base
	Text      string
	Completed bool
	Index     int
}

func (TodoRow) Render() core.Output { return core.Empty() }

func (r TodoRow) Label() string {
	if r.Completed {
		return "[x] " + r.Text
	}
	return "[ ] " + r.Text
}

func (r TodoRow) CrossedOut() bool { return r.Completed }

// FilterBar renders a button per filter.
type FilterBar struct {
	core.Base
	Selected Filter
}

func (b FilterBar) Render() core.Output {
	buttons := make([]FilterButton, len(Filters))
	for i, f := range Filters {
		buttons[i] = FilterButton{Filter: f, Selected: f == b.Selected}
	}
	return core.List(buttons)
}

func (FilterBar) Label() string { return "filter:" }

// FilterButton selects Filter when activated.
type FilterButton struct {
	core.Base
	Filter   Filter
	Selected bool
}

func (FilterButton) Render() core.Output { return core.Empty() }

func (b FilterButton) Label() string { return b.Filter.String() }

func (b FilterButton) Emphasized() bool { return b.Selected }

// InputBox shows the pending input text.
type InputBox struct {
	core.Base
	Text string
}

func (InputBox) Render() core.Output { return core.Empty() }

func (b InputBox) Label() string { return strings.TrimSpace("> " + b.Text) }
