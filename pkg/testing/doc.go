// Package testing provides test tooling for flow components and states.
//
// # Quick Start
//
// Create a tester, deliver events, and make assertions:
//
//	func TestAddTodo(t *testing.T) {
//	    tester := flowtest.NewTester(t, todo.App{}, todo.View)
//	    require.NoError(t, tester.Step(todo.AddTodo{Text: "buy milk"}))
//
//	    row := tester.Find(flowtest.ByType[todo.TodoRow]()).Component()
//	    assert.Equal(t, "buy milk", row.(todo.TodoRow).Text)
//	    assert.Equal(t, 0, tester.Recorder().Count(flowtest.Unmount))
//	}
//
// The tester records every lifecycle event and renders in strict mode, so
// components whose Render is not a pure function of their fields make the
// pass fail.
//
// # Snapshot Testing
//
// Capture the tree as indented text and compare it with a golden file under
// testdata/:
//
//	tester.Snapshot().MatchesGolden(t, "add_todo")
//
// Update golden files with:
//
//	go test ./... -update
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import flowtest "github.com/go-drift/flow/pkg/testing"
package testing
