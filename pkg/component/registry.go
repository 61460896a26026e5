// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"fmt"
)

// Registry holds the known controllers in registration order.
type Registry struct {
	controllers map[string]Controller
	order       []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{controllers: map[string]Controller{}}
}

// Add registers a controller. It panics on a duplicate name, which is a
// programming error.
func (r *Registry) Add(controllers ...Controller) *Registry {
	for _, c := range controllers {
		if _, ok := r.controllers[c.Name()]; ok {
			panic(fmt.Sprintf("component %q registered twice", c.Name()))
		}
		r.controllers[c.Name()] = c
		r.order = append(r.order, c.Name())
	}
	return r
}

// Get returns the named controller.
func (r *Registry) Get(name string) (Controller, bool) {
	c, ok := r.controllers[name]
	return c, ok
}

// Names returns all registered component names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// CreationOrder returns the requested controllers sorted so that every
// controller comes after its registered dependencies. Dependencies that are
// registered but not requested are not pulled in: the diff engine decides
// what runs, the registry only orders it. The sort is stable with respect to
// registration order.
func (r *Registry) CreationOrder(names []string) ([]Controller, error) {
	requested := map[string]bool{}
	for _, name := range names {
		if _, ok := r.controllers[name]; !ok {
			return nil, fmt.Errorf("unknown component %q", name)
		}
		requested[name] = true
	}

	var (
		sorted   []Controller
		done     = map[string]bool{}
		visiting = map[string]bool{}
	)

	var visit func(name string) error
	visit = func(name string) error {
		if done[name] || !requested[name] {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("dependency cycle through component %q", name)
		}
		visiting[name] = true
		for _, dep := range r.controllers[name].Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[name] = false
		done[name] = true
		sorted = append(sorted, r.controllers[name])
		return nil
	}

	for _, name := range r.order {
		if requested[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}
	return sorted, nil
}

// DeletionOrder returns the requested controllers in reverse creation order.
func (r *Registry) DeletionOrder(names []string) ([]Controller, error) {
	sorted, err := r.CreationOrder(names)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted, nil
}
