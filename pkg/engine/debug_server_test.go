package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/flow/pkg/errors"
)

// waitForServer polls the health endpoint until ready or timeout.
func waitForServer(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://%s/health", addr)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

// waitForServerDown polls until the server stops responding or timeout.
func waitForServerDown(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://%s/health", addr)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err != nil {
			return nil // Connection refused = server is down
		}
		resp.Body.Close()
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server still running after %v", timeout)
}

func debugEngine(t *testing.T, events ...Event) *Engine[listState] {
	t.Helper()
	e := New(listState{}, view, nil)
	if err := e.Render(); err != nil {
		t.Fatal(err)
	}
	for _, ev := range events {
		if err := e.Step(ev); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDebugServer_StartStop(t *testing.T) {
	var srv DebugServer
	addr, err := srv.Start("127.0.0.1:0", NewDebugHandler(debugEngine(t)))
	if err != nil {
		t.Fatalf("failed to start debug server: %v", err)
	}
	defer srv.Shutdown(context.Background())

	if err := waitForServer(addr, 2*time.Second); err != nil {
		t.Fatalf("server not ready: %v", err)
	}

	again, err := srv.Start("127.0.0.1:0", http.NotFoundHandler())
	if err != nil || again != addr {
		t.Errorf("second Start should return the running address %s, got %s (%v)", addr, again, err)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := waitForServerDown(addr, 2*time.Second); err != nil {
		t.Errorf("server did not stop: %v", err)
	}
}

func TestDebugHandler_Health(t *testing.T) {
	rec := get(t, NewDebugHandler(debugEngine(t)), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var health map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", health["status"])
	}
}

func TestDebugHandler_Tree(t *testing.T) {
	rec := get(t, NewDebugHandler(debugEngine(t, addItem{"a"}, addItem{"b"})), "/tree")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var root TreeNode
	if err := json.Unmarshal(rec.Body.Bytes(), &root); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if root.Component != "engine.page" || root.Kind != "single" || root.Path != "/" {
		t.Errorf("unexpected root %+v", root)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if got := root.Children[1]; got.Component != "engine.item" || got.Path != "/1" {
		t.Errorf("unexpected child %+v", got)
	}
}

func TestDebugHandler_ReportsPanics(t *testing.T) {
	var logs bytes.Buffer
	errors.SetHandler(&errors.LogHandler{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	t.Cleanup(func() { errors.SetHandler(nil) })

	router := NewDebugHandler(debugEngine(t))
	router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := get(t, router, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if out := logs.String(); !strings.Contains(out, "flow panic") || !strings.Contains(out, "op=engine.DebugHandler") {
		t.Errorf("panic not reported: %s", out)
	}
}

func TestDebugHandler_TreeBeforeFirstPass(t *testing.T) {
	rec := get(t, NewDebugHandler(New(listState{}, view, nil)), "/tree")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestDebugHandler_Snapshot(t *testing.T) {
	rec := get(t, NewDebugHandler(debugEngine(t, addItem{"a"})), "/snapshot")

	want := "engine.page#0 Items=[a]\n  engine.item#0 Text=\"a\"\n"
	body, _ := io.ReadAll(rec.Body)
	if string(body) != want {
		t.Errorf("expected %q, got %q", want, body)
	}
}

func TestDebugHandler_PassesFilters(t *testing.T) {
	h := NewDebugHandler(debugEngine(t, addItem{"a"}, clearItems{}, addItem{"b"}))

	decode := func(target string) PassTimeline {
		t.Helper()
		var tl PassTimeline
		if err := json.Unmarshal(get(t, h, target).Body.Bytes(), &tl); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
		return tl
	}

	if got := len(decode("/passes").Samples); got != 4 {
		t.Errorf("expected 4 samples, got %d", got)
	}
	adds := decode("/passes?event=engine.addItem")
	if len(adds.Samples) != 2 || adds.Samples[1].Seq != 4 {
		t.Errorf("unexpected addItem samples %+v", adds.Samples)
	}
	last := decode("/passes?limit=1")
	if len(last.Samples) != 1 || last.Samples[0].Seq != 4 {
		t.Errorf("unexpected limited samples %+v", last.Samples)
	}
	if got := len(decode("/passes?failed=true").Samples); got != 0 {
		t.Errorf("expected no failed samples, got %d", got)
	}
}

func TestDebugHandler_DebugInfo(t *testing.T) {
	quietErrors(t)
	e := debugEngine(t, addItem{"a"})
	_ = e.Step(corrupt{})

	var info DebugInfo
	if err := json.Unmarshal(get(t, NewDebugHandler(e), "/debug").Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !info.HasRoot || info.RootType != "engine.page" {
		t.Errorf("unexpected root info %+v", info)
	}
	if info.Nodes != 2 || info.Passes != 3 {
		t.Errorf("expected 2 nodes after 3 passes, got %+v", info)
	}
	if info.Totals.Mounted != 2 {
		t.Errorf("expected 2 mounts in totals, got %d", info.Totals.Mounted)
	}
	if info.Halted == "" {
		t.Error("expected halted error")
	}
}
