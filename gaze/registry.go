package gaze

import "github.com/milk9111/reticulum/ecs"

// Registry is the insertion-ordered set of gazeable entities. Adding an
// entity twice keeps its original position.
type Registry struct {
	order []ecs.Entity
	index map[ecs.Entity]struct{}
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[ecs.Entity]struct{})}
}

// Add appends e. It reports false when e was already registered.
func (r *Registry) Add(e ecs.Entity) bool {
	if _, ok := r.index[e]; ok {
		return false
	}
	r.index[e] = struct{}{}
	r.order = append(r.order, e)
	return true
}

// Remove drops e. It reports false when e was not registered.
func (r *Registry) Remove(e ecs.Entity) bool {
	if _, ok := r.index[e]; !ok {
		return false
	}
	delete(r.index, e)
	for i, cur := range r.order {
		if cur == e {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Contains(e ecs.Entity) bool {
	_, ok := r.index[e]
	return ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Entities returns the registered entities in insertion order. Callers must
// not mutate the slice.
func (r *Registry) Entities() []ecs.Entity {
	return r.order
}
