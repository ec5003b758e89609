package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/errors"
	"github.com/go-drift/flow/pkg/tree"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// Inspectable is what the debug handler reads from. *Engine satisfies it
// for every state type.
type Inspectable interface {
	// Inspect runs fn with the tree while no pass is running.
	Inspect(fn func(t *tree.Tree))
	Trace() *PassTrace
	Err() error
}

// TreeNode represents a node in the serialized persistent tree.
type TreeNode struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Component string     `json:"component,omitempty"`
	Path      string     `json:"path"`
	Children  []TreeNode `json:"children,omitempty"`
}

// DebugInfo summarizes the engine for the /debug endpoint.
type DebugInfo struct {
	HasRoot  bool       `json:"hasRoot"`
	RootType string     `json:"rootType,omitempty"`
	Nodes    int        `json:"nodes"`
	Passes   int64      `json:"passes"`
	Totals   tree.Stats `json:"totals"`
	Halted   string     `json:"halted,omitempty"`
}

// NewDebugHandler returns a router serving tree and pass inspection
// endpoints for src:
//
//	GET /health    liveness
//	GET /debug     DebugInfo
//	GET /tree      the tree as nested TreeNode JSON
//	GET /snapshot  the tree as indented text
//	GET /passes    the pass timeline; filters: limit, min_ms, event, failed
//
// Callers may mount further routes, such as a metrics handler, on the
// returned router.
func NewDebugHandler(src Inspectable) chi.Router {
	r := chi.NewRouter()
	r.Use(reportPanics)
	r.Get("/health", handleHealth)
	r.Get("/debug", func(w http.ResponseWriter, _ *http.Request) {
		var info DebugInfo
		src.Inspect(func(t *tree.Tree) {
			info.HasRoot = !t.Root().IsZero()
			if info.HasRoot {
				info.RootType = core.TypeName(t.Component(t.Root()))
			}
			info.Nodes = t.Len()
		})
		timeline := src.Trace().Snapshot()
		if last, ok := src.Trace().Last(); ok {
			info.Passes = last.Seq
		}
		info.Totals = timeline.Totals()
		if err := src.Err(); err != nil {
			info.Halted = err.Error()
		}
		writeJSON(w, info)
	})
	r.Get("/tree", func(w http.ResponseWriter, _ *http.Request) {
		var root *TreeNode
		src.Inspect(func(t *tree.Tree) {
			if !t.Root().IsZero() {
				n := serializeTree(t, t.Root(), 0)
				root = &n
			}
		})
		if root == nil {
			http.Error(w, "no tree", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, root)
	})
	r.Get("/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		var text string
		src.Inspect(func(t *tree.Tree) { text = tree.Snapshot(t) })
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(text))
	})
	r.Get("/passes", func(w http.ResponseWriter, r *http.Request) {
		resp := src.Trace().Snapshot()
		applyPassFilters(r, &resp)
		writeJSON(w, resp)
	})
	return r
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func applyPassFilters(r *http.Request, resp *PassTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(PassSample) bool

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s PassSample) bool { return durationToMillis(s.Duration) >= v })
	}
	if event := r.URL.Query().Get("event"); event != "" {
		filters = append(filters, func(s PassSample) bool { return s.Event == event })
	}
	if value := r.URL.Query().Get("failed"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil && parsed {
			filters = append(filters, func(s PassSample) bool { return s.Failed })
		}
	}

	if len(filters) > 0 {
		filtered := make([]PassSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

// serializeTree recursively converts the subtree at id to JSON-serializable form.
// The depth parameter limits recursion to prevent stack overflow.
func serializeTree(t *tree.Tree, id tree.NodeID, depth int) TreeNode {
	node := TreeNode{
		ID:   id.String(),
		Kind: t.Kind(id).String(),
		Path: t.PathOf(id).String(),
	}
	if c := t.Component(id); c != nil {
		node.Component = core.TypeName(c)
	}
	if depth < maxTreeDepth {
		for _, child := range t.Children(id) {
			node.Children = append(node.Children, serializeTree(t, child, depth+1))
		}
	}
	return node
}

// DebugServer serves a debug handler over HTTP.
type DebugServer struct {
	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// reportPanics sends a panicking handler to the global error handler and
// answers 500.
func reportPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served := false
		defer func() {
			if !served {
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		defer errors.Recover("engine.DebugHandler")
		next.ServeHTTP(w, r)
		served = true
	})
}

// Start listens on addr and serves h in the background. It returns the
// bound address, which resolves an ephemeral port such as ":0".
func (s *DebugServer) Start(addr string, h http.Handler) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		// Already running - return current address
		return s.listener.Addr().String(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("debug server listen: %w", err)
	}

	server := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			// Server failed - clear state so it can be restarted
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
		}
	}()

	return listener.Addr().String(), nil
}

// Shutdown gracefully stops the server.
func (s *DebugServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
