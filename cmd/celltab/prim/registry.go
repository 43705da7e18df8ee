package prim

import (
	"context"
	"fmt"
)

// Registry is the immutable store of validated primitives. It is built once
// by Engine.Build and never changes afterwards, so any number of goroutines
// may read it without synchronisation.
type Registry struct {
	names  []string
	byName map[string]*Primitive
}

func newRegistry(models []*Primitive) *Registry {
	r := &Registry{
		names:  make([]string, 0, len(models)),
		byName: make(map[string]*Primitive, len(models)),
	}
	for _, p := range models {
		r.names = append(r.names, p.name)
		r.byName[p.name] = p
	}
	return r
}

// Lookup returns the primitive with the given name.
// Returns an error wrapping ErrNotFound if there is none.
func (r *Registry) Lookup(name string) (*Primitive, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// Names returns the primitive names in table order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of primitives.
func (r *Registry) Len() int { return len(r.names) }

// All returns the primitives in table order.
func (r *Registry) All() []*Primitive {
	out := make([]*Primitive, len(r.names))
	for i, n := range r.names {
		out[i] = r.byName[n]
	}
	return out
}

// ByKind returns the primitives of one category, in table order.
func (r *Registry) ByKind(kind Kind) []*Primitive {
	var out []*Primitive
	for _, n := range r.names {
		if p := r.byName[n]; p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Pending is a registry being built in the background. Consumers must go
// through Wait or Registry; neither ever exposes an incomplete registry.
type Pending struct {
	done chan struct{}
	reg  *Registry
	err  error
}

// Start runs build on its own goroutine and returns immediately.
func Start(ctx context.Context, build func(context.Context) (*Registry, error)) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				p.reg, p.err = nil, fmt.Errorf("registry build panicked: %v", r)
			}
		}()
		p.reg, p.err = build(ctx)
	}()
	return p
}

// Wait blocks until the build finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Registry, error) {
	select {
	case <-p.done:
		return p.reg, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Registry returns the finished registry without blocking, or ErrNotReady
// while the build is still running.
func (p *Pending) Registry() (*Registry, error) {
	select {
	case <-p.done:
		return p.reg, p.err
	default:
		return nil, ErrNotReady
	}
}

// Done is closed when the build has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }
