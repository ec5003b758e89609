// Package config loads the optional flow.yaml project configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/flow/pkg/engine"
	"github.com/go-drift/flow/pkg/errors"
	"github.com/go-drift/flow/pkg/tree"
)

// FileName is the configuration file looked up in the project root.
const FileName = "flow.yaml"

const (
	opLoad    = "config.Load"
	opResolve = "config.Resolve"

	defaultAppName = "flow_app"
)

// Config represents the optional flow.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Engine EngineConfig `yaml:"engine"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// EngineConfig contains engine settings. Pointer fields distinguish an
// explicit zero from an absent key.
type EngineConfig struct {
	TraceCapacity int   `yaml:"trace_capacity,omitempty"`
	SlowPassMs    int   `yaml:"slow_pass_ms,omitempty"`
	StrictRender  *bool `yaml:"strict_render,omitempty"`
	RenderCache   int   `yaml:"render_cache,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string
	ModulePath    string
	AppName       string
	TraceCapacity int
	SlowPass      time.Duration
	StrictRender  bool
	RenderCache   int
}

// LoadOptional reads flow.yaml from dir if present. A missing file yields an
// empty Config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, configError(opLoad, fmt.Errorf("failed to read %s: %w", FileName, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError(opLoad, fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	return &cfg, nil
}

// Resolve loads flow.yaml (if present) from dir and fills in defaults. The
// module path is read from dir/go.mod when there is one.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Engine.validate(); err != nil {
		return nil, configError(opResolve, err)
	}

	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, configError(opResolve, err)
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultName(modulePath, dir)
	}

	strict := false
	if cfg.Engine.StrictRender != nil {
		strict = *cfg.Engine.StrictRender
	}

	return &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		AppName:       appName,
		TraceCapacity: cfg.Engine.TraceCapacity,
		SlowPass:      time.Duration(cfg.Engine.SlowPassMs) * time.Millisecond,
		StrictRender:  strict,
		RenderCache:   cfg.Engine.RenderCache,
	}, nil
}

// EngineOptions converts the resolved settings into engine options. Zero
// values leave the engine defaults in place.
func (r *Resolved) EngineOptions() []engine.Option {
	var opts []engine.Option
	if r.TraceCapacity > 0 {
		opts = append(opts, engine.WithTraceCapacity(r.TraceCapacity))
	}
	if r.SlowPass > 0 {
		opts = append(opts, engine.WithSlowPassThreshold(r.SlowPass))
	}
	var treeOpts []tree.Option
	if r.StrictRender {
		treeOpts = append(treeOpts, tree.WithStrictRender(true))
	}
	if r.RenderCache > 0 {
		treeOpts = append(treeOpts, tree.WithRenderCache(r.RenderCache))
	}
	if len(treeOpts) > 0 {
		opts = append(opts, engine.WithTreeOptions(treeOpts...))
	}
	return opts
}

func (c EngineConfig) validate() error {
	switch {
	case c.TraceCapacity < 0:
		return fmt.Errorf("engine.trace_capacity cannot be negative (got %d)", c.TraceCapacity)
	case c.SlowPassMs < 0:
		return fmt.Errorf("engine.slow_pass_ms cannot be negative (got %d)", c.SlowPassMs)
	case c.RenderCache < 0:
		return fmt.Errorf("engine.render_cache cannot be negative (got %d)", c.RenderCache)
	}
	return nil
}

// FindProjectRoot walks up from start to the nearest directory holding a
// go.mod.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", configError("config.FindProjectRoot", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", configError("config.FindProjectRoot", fmt.Errorf("no go.mod above %s", start))
		}
		dir = parent
	}
}

// modulePath returns the module path declared in dir/go.mod, or "" when
// dir has no go.mod.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return defaultAppName
	}
	return base
}

func configError(op string, err error) *errors.FlowError {
	return &errors.FlowError{Op: op, Kind: errors.KindConfig, Err: err}
}
