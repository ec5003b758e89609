package errors

import (
	"log/slog"
	"os"
)

// LogHandler is an ErrorHandler that writes structured records with slog.
type LogHandler struct {
	// Logger receives the records. A nil Logger logs as text to stderr.
	Logger *slog.Logger
	// Verbose adds stack traces to panic and contract records.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// HandleError logs a FlowError.
func (h *LogHandler) HandleError(err *FlowError) {
	if err == nil {
		return
	}
	h.logger().Error("flow error", "op", err.Op, "kind", err.Kind.String(), "err", err.Err)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("flow panic", attrs...)
}

// HandleContract logs a ContractError.
func (h *LogHandler) HandleContract(err *ContractError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "detail", err.Detail}
	if err.Node != "" {
		attrs = append(attrs, "node", err.Node)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("contract violation", attrs...)
}
