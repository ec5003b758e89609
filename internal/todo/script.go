package todo

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/flow/pkg/errors"
	"github.com/go-drift/flow/pkg/reduce"
)

const opLoadScript = "todo.LoadScript"

// eventTypes maps the script "type" key to a constructor of the event's
// zero value.
var eventTypes = map[string]func() any{
	"add_todo":     func() any { return &AddTodo{} },
	"toggle_todo":  func() any { return &ToggleTodo{} },
	"nothing":      func() any { return &Nothing{} },
	"set_filter":   func() any { return &SetFilter{} },
	"edit_input":   func() any { return &EditInput{} },
	"submit_input": func() any { return &SubmitInput{} },
}

// EventTypes returns the script event type names, sorted.
func EventTypes() []string {
	names := make([]string, 0, len(eventTypes))
	for name := range eventTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScript decodes a YAML event script: a sequence of mappings, each with
// a "type" key naming the event and the event's fields alongside it.
//
//	- type: add_todo
//	  text: buy milk
//	- type: toggle_todo
//	  index: 0
//	- type: set_filter
//	  filter: completed
func LoadScript(r io.Reader) ([]reduce.Event, error) {
	var steps []map[string]any
	if err := yaml.NewDecoder(r).Decode(&steps); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, scriptError(fmt.Errorf("failed to parse script: %w", err))
	}

	events := make([]reduce.Event, 0, len(steps))
	for i, step := range steps {
		ev, err := decodeStep(step)
		if err != nil {
			return nil, scriptError(fmt.Errorf("step %d: %w", i, err))
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeStep(step map[string]any) (reduce.Event, error) {
	name, _ := step["type"].(string)
	if name == "" {
		return nil, fmt.Errorf("missing event type")
	}
	newEvent, ok := eventTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q (want one of %s)", name, strings.Join(EventTypes(), ", "))
	}

	fields := make(map[string]any, len(step))
	for k, v := range step {
		if k != "type" {
			fields[k] = v
		}
	}

	target := newEvent()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  stringToFilterHook,
		ErrorUnused: true,
		Result:      target,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return reflect.ValueOf(target).Elem().Interface(), nil
}

func stringToFilterHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(ShowAll) {
		return data, nil
	}
	return ParseFilter(data.(string))
}

func scriptError(err error) *errors.FlowError {
	return &errors.FlowError{Op: opLoadScript, Kind: errors.KindScript, Err: err}
}
