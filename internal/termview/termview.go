// Package termview is a terminal backend for the example application. It
// keeps one display resource per mounted component and prints the
// labelled ones as an indented outline.
package termview

import (
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/tree"
)

// Labeler is implemented by components that display a line of text.
// Components without a label are kept as resources but not printed.
type Labeler interface {
	Label() string
}

// CrossedOuter is implemented by components whose label can be struck
// through, such as completed todos.
type CrossedOuter interface {
	CrossedOut() bool
}

// Emphasizer is implemented by components whose label can be bold, such as
// the selected filter.
type Emphasizer interface {
	Emphasized() bool
}

// Resource is the display-side record of a mounted component.
type Resource struct {
	ID uuid.UUID
	// Node is the tree handle the resource was mounted for.
	Node tree.NodeID
	// Parent is the resource of the nearest mounted ancestor, nil at the root.
	Parent *Resource
	Label  string
	// Width is the label's advance in pixels in the backend's face.
	Width      int
	CrossedOut bool
	Emphasized bool
}

// Depth counts the labelled ancestors of r.
func (r *Resource) Depth() int {
	d := 0
	for p := r.Parent; p != nil; p = p.Parent {
		if p.Label != "" {
			d++
		}
	}
	return d
}

// Backend tracks display resources for a tree. Mount is the engine's mount
// notification; Hooks keeps resources in step with updates and unmounts.
type Backend struct {
	mu        sync.Mutex
	resources map[tree.NodeID]*Resource
	face      font.Face
	profile   termenv.Profile
	newID     func() uuid.UUID
}

// Option configures a Backend.
type Option func(*Backend)

// WithProfile sets the colour profile used by Render. The default,
// termenv.Ascii, prints plain text.
func WithProfile(p termenv.Profile) Option {
	return func(b *Backend) { b.profile = p }
}

// WithFace sets the face labels are measured in.
func WithFace(f font.Face) Option {
	return func(b *Backend) {
		if f != nil {
			b.face = f
		}
	}
}

// WithIDSource replaces uuid.New as the resource ID generator.
func WithIDSource(fn func() uuid.UUID) Option {
	return func(b *Backend) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// New creates an empty backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		resources: make(map[tree.NodeID]*Resource),
		face:      basicfont.Face7x13,
		profile:   termenv.Ascii,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount creates the resource for a newly mounted component.
func (b *Backend) Mount(e tree.MountEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &Resource{ID: b.newID(), Node: e.ID, Parent: b.resources[e.Parent]}
	b.describe(r, e.Component)
	b.resources[e.ID] = r
}

// Hooks returns the tree observers that refresh resources on update and
// release them on unmount.
func (b *Backend) Hooks() tree.Hooks {
	return tree.Hooks{
		OnUpdate: func(e tree.UpdateEvent) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if r, ok := b.resources[e.ID]; ok {
				b.describe(r, e.Component)
			}
		},
		OnUnmount: func(e tree.UnmountEvent) {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.resources, e.ID)
		},
	}
}

func (b *Backend) describe(r *Resource, c core.Component) {
	r.Label, r.CrossedOut, r.Emphasized = "", false, false
	if l, ok := c.(Labeler); ok {
		r.Label = l.Label()
	}
	if s, ok := c.(CrossedOuter); ok {
		r.CrossedOut = s.CrossedOut()
	}
	if s, ok := c.(Emphasizer); ok {
		r.Emphasized = s.Emphasized()
	}
	r.Width = font.MeasureString(b.face, r.Label).Ceil()
}

// Resource returns the resource mounted for id.
func (b *Backend) Resource(id tree.NodeID) (*Resource, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.resources[id]
	return r, ok
}

// Len returns the number of live resources.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.resources)
}

// Width returns the widest labelled line of t in pixels, indentation
// included.
func (b *Backend) Width(t *tree.Tree) int {
	indent := font.MeasureString(b.face, "  ").Ceil()
	widest := 0
	b.each(t, func(r *Resource) {
		widest = max(widest, r.Depth()*indent+r.Width)
	})
	return widest
}

// Render writes the labelled resources of t in tree order, one per line,
// indented by labelled depth.
func (b *Backend) Render(w io.Writer, t *tree.Tree) error {
	var sb strings.Builder
	b.each(t, func(r *Resource) {
		sb.WriteString(strings.Repeat("  ", r.Depth()))
		sb.WriteString(b.style(r).String())
		sb.WriteByte('\n')
	})
	_, err := io.WriteString(w, sb.String())
	return err
}

func (b *Backend) each(t *tree.Tree, fn func(*Resource)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.Walk(func(id tree.NodeID, _ int) bool {
		if r, ok := b.resources[id]; ok && r.Label != "" {
			fn(r)
		}
		return true
	})
}

func (b *Backend) style(r *Resource) termenv.Style {
	s := b.profile.String(r.Label)
	if r.CrossedOut {
		s = s.CrossOut().Faint()
	}
	if r.Emphasized {
		s = s.Bold().Foreground(b.profile.Color("#818cf8"))
	}
	return s
}
