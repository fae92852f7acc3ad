// Package viewport tracks which display objects are attached to each render
// surface, keyed by viewport and logical role.
//
// The registry is the only code that calls AddObject and RemoveObject on a
// surface. It is not safe for concurrent use; all calls must come from the
// event loop that owns the scenes.
package viewport

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ID names one of the render surfaces
type ID string

// The three surfaces of the viewer
const (
	Viewer1 ID = "viewer1" // full mesh with cut plane
	Viewer2 ID = "viewer2" // mesh below the cut with cut plane
	Viewer3 ID = "viewer3" // 2D layer
)

// All lists the surfaces in render order
var All = []ID{Viewer1, Viewer2, Viewer3}

// Role is the logical slot an object occupies on a surface
type Role string

const (
	RoleMesh        Role = "mesh"
	RolePlane       Role = "plane"
	RoleSliceShapes Role = "sliceShapes"
)

// ErrUnknownViewport is returned for operations on an unregistered surface
var ErrUnknownViewport = errors.New("viewport: unknown viewport")

// Object is anything a surface can display
type Object interface {
	ID() string
}

// Surface is a render target owning a live scene
type Surface interface {
	AddObject(obj Object) error
	RemoveObject(obj Object) error
	Render() error
}

type slot struct {
	viewport ID
	role     Role
}

// Registry is the single point of truth for what is attached where
type Registry struct {
	surfaces map[ID]Surface
	attached map[slot][]Object
	logger   *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		surfaces: make(map[ID]Surface),
		attached: make(map[slot][]Object),
		logger:   logger,
	}
}

// Register adds a surface under id, replacing any previous one
func (r *Registry) Register(id ID, surface Surface) {
	r.surfaces[id] = surface
}

// Surface returns the surface registered under id
func (r *Registry) Surface(id ID) (Surface, bool) {
	s, ok := r.surfaces[id]
	return s, ok
}

func (r *Registry) surface(id ID) (Surface, error) {
	s, ok := r.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownViewport, id)
	}
	return s, nil
}

// Attach places obj into role on the viewport, detaching the current
// occupant first. Attaching the object that already occupies the role is a
// no-op.
func (r *Registry) Attach(id ID, role Role, obj Object) error {
	key := slot{id, role}
	if current := r.attached[key]; len(current) == 1 && current[0].ID() == obj.ID() {
		return nil
	}
	if err := r.DetachAll(id, role); err != nil {
		return err
	}
	return r.add(key, obj)
}

// DetachAll removes every object tracked under role; idempotent
func (r *Registry) DetachAll(id ID, role Role) error {
	s, err := r.surface(id)
	if err != nil {
		return err
	}

	key := slot{id, role}
	objs := r.attached[key]
	for len(objs) > 0 {
		if err := s.RemoveObject(objs[0]); err != nil {
			r.attached[key] = objs
			return err
		}
		objs = objs[1:]
	}
	delete(r.attached, key)
	return nil
}

// ReplaceSet detaches the tracked set for role and attaches all of objs.
// On success exactly objs are present. A surface error is returned as is;
// objects attached before the failure stay attached and tracked.
func (r *Registry) ReplaceSet(id ID, role Role, objs []Object) error {
	if err := r.DetachAll(id, role); err != nil {
		return err
	}
	key := slot{id, role}
	for _, obj := range objs {
		if err := r.add(key, obj); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) add(key slot, obj Object) error {
	s, err := r.surface(key.viewport)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(r.attached[key], func(o Object) bool { return o.ID() == obj.ID() }) {
		return nil
	}
	if err := s.AddObject(obj); err != nil {
		return err
	}
	r.attached[key] = append(r.attached[key], obj)
	return nil
}

// Objects returns a copy of the objects tracked under role
func (r *Registry) Objects(id ID, role Role) []Object {
	return slices.Clone(r.attached[slot{id, role}])
}

// Render asks each listed surface to redraw, or all surfaces when none
// are listed. Every surface is attempted; the errors are joined.
func (r *Registry) Render(ids ...ID) error {
	if len(ids) == 0 {
		ids = r.registered()
	}
	var errs []error
	for _, id := range ids {
		s, err := r.surface(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.Render(); err != nil {
			errs = append(errs, fmt.Errorf("render %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Teardown detaches every tracked object from every surface
func (r *Registry) Teardown() error {
	var errs []error
	for key := range r.attached {
		if err := r.DetachAll(key.viewport, key.role); err != nil {
			errs = append(errs, err)
		}
	}
	r.logger.Debug("viewports torn down", "errors", len(errs))
	return errors.Join(errs...)
}

func (r *Registry) registered() []ID {
	ids := make([]ID, 0, len(r.surfaces))
	for _, id := range All {
		if _, ok := r.surfaces[id]; ok {
			ids = append(ids, id)
		}
	}
	for id := range r.surfaces {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
