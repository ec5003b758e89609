// Package errors provides structured error handling for the flow engine.
//
// Reconciliation has no recoverable error taxonomy. A pass either completes
// or hits a contract violation, which is fatal: the engine halts instead of
// continuing with a corrupted tree. Errors outside a pass (configuration,
// event scripts) are ordinary wrapped errors carried by FlowError.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates a configuration loading or validation error.
	KindConfig
	// KindScript indicates an event script that could not be decoded.
	KindScript
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// FlowError represents a structured error outside a reconciliation pass.
type FlowError struct {
	// Op is the operation that failed (e.g., "config.Resolve").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// ContractError reports input the engine is not defined for: an invalid
// Output, a stale node handle, a non-deterministic render, a reentrant pass.
// It signals a defect in the embedding application or in the engine itself.
type ContractError struct {
	// Op is the operation that detected the violation (e.g., "tree.Reconcile").
	Op string
	// Detail describes what was violated.
	Detail string
	// Node is the variant of the node involved, if any.
	Node string
	// StackTrace contains the call stack at the time of the violation.
	StackTrace string
	// Timestamp is when the violation was detected.
	Timestamp time.Time
}

func (e *ContractError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("contract violation in %s at %s: %s", e.Op, e.Node, e.Detail)
	}
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Detail)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Step").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called for ordinary structured errors.
	HandleError(err *FlowError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleContract is called when a contract violation halts a pass.
	HandleContract(err *ContractError)
}
