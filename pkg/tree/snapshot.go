package tree

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/flow/pkg/core"
)

var baseType = reflect.TypeOf(core.Base{})

// Snapshot renders the tree as indented text, one node per line, parent
// before children. Single nodes print as their variant with a per-variant
// ordinal, followed by their exported fields; multi nodes print their
// child count:
//
//	todo.AppView#0 Filter=all Input=""
//	  todo.TodoList#0 ...
//	    multi[2]
//	      todo.TodoRow#0 Text="a" Completed=false
//
// The output is stable across runs for equal trees, which makes it suitable
// for golden files.
func Snapshot(t *Tree) string {
	var sb strings.Builder
	counter := &typeCounter{}
	t.Walk(func(id NodeID, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		n := &t.nodes[id.index]
		if n.kind == KindMulti {
			fmt.Fprintf(&sb, "multi[%d]\n", len(n.children))
			return true
		}
		name := core.TypeName(n.component)
		sb.WriteString(counter.next(name))
		writeFields(&sb, n.component)
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// typeCounter assigns stable IDs like "todo.TodoRow#0", "todo.TodoRow#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func writeFields(sb *strings.Builder, c core.Component) {
	v := reflect.ValueOf(c)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		fmt.Fprintf(sb, " %v", v.Interface())
		return
	}
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() || (f.Anonymous && f.Type == baseType) {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(formatValue(v.Field(i)))
	}
}

func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.String {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%q", v.String())
	}
	return fmt.Sprintf("%+v", v.Interface())
}
