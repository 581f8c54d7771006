package deps

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

type ID = int64

// ErrNotFound is returned by an edges function for unknown ids.
var ErrNotFound = errors.New("program not found")

// CycleError carries the ordered cycle path, starting and ending with the same id.
type CycleError struct {
	Path []ID
}

func (c *CycleError) Error() string {
	parts := make([]string, len(c.Path))
	for i, id := range c.Path {
		parts[i] = fmt.Sprintf("A%06d", id)
	}
	return "cyclic dependency: " + strings.Join(parts, " -> ")
}

type MissingError struct {
	ID ID
	// From is the program containing the call, 0 for the start id
	From ID
}

func (m *MissingError) Error() string {
	if m.From == 0 {
		return fmt.Sprintf("A%06d: %v", m.ID, ErrNotFound)
	}
	return fmt.Sprintf("A%06d called by A%06d: %v", m.ID, m.From, ErrNotFound)
}

func (m *MissingError) Unwrap() error {
	return ErrNotFound
}

// Edges returns the direct callees of a program.
type Edges func(id ID) ([]ID, error)

// Resolver computes dependency closures over static call edges.
// Direct edges and validated closures are cached. Safe for concurrent use.
// Edges are loaded outside the lock, one load per id at a time.
type Resolver struct {
	edges Edges
	loads singleflight.Group

	mu       sync.Mutex
	direct   map[ID][]ID
	resolved map[ID][]ID
}

func NewResolver(edges Edges) *Resolver {
	return &Resolver{
		edges:    edges,
		direct:   make(map[ID][]ID),
		resolved: make(map[ID][]ID),
	}
}

func (r *Resolver) DirectDependencies(id ID) ([]ID, error) {
	return r.directDeps(id, 0)
}

func (r *Resolver) directDeps(id ID, from ID) ([]ID, error) {
	r.mu.Lock()
	ids, ok := r.direct[id]
	r.mu.Unlock()
	if ok {
		return ids, nil
	}

	v, err, _ := r.loads.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// a load may have finished before Do
		r.mu.Lock()
		ids, ok := r.direct[id]
		r.mu.Unlock()
		if ok {
			return ids, nil
		}
		ids, err := r.edges(id)
		if err != nil {
			return nil, err
		}
		ids = slices.Clone(ids)
		slices.Sort(ids)
		ids = slices.Compact(ids)
		r.mu.Lock()
		r.direct[id] = ids
		r.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &MissingError{
				ID:   id,
				From: from,
			}
		}
		return nil, fmt.Errorf("A%06d: %w", id, err)
	}
	return v.([]ID), nil
}

func (r *Resolver) lookupResolved(id ID) ([]ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.resolved[id]
	return ids, ok
}

// resolve records the closure of id from the closures of its direct dependencies.
func (r *Resolver) resolve(id ID, deps []ID) []ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	closure := make(map[ID]struct{})
	for _, dep := range deps {
		closure[dep] = struct{}{}
		for _, d := range r.resolved[dep] {
			closure[d] = struct{}{}
		}
	}
	ids := make([]ID, 0, len(closure))
	for d := range closure {
		ids = append(ids, d)
	}
	slices.Sort(ids)
	r.resolved[id] = ids
	return ids
}

type frame struct {
	id   ID
	deps []ID
	next int
}

// TransitiveDependencies returns the sorted ids reachable from id, excluding id itself.
// The traversal is iterative so that deep chains never grow the goroutine stack.
func (r *Resolver) TransitiveDependencies(id ID) ([]ID, error) {
	if ids, ok := r.lookupResolved(id); ok {
		return ids, nil
	}

	deps, err := r.directDeps(id, 0)
	if err != nil {
		return nil, err
	}

	onPath := map[ID]int{
		id: 0,
	}
	path := []ID{id}
	stack := []*frame{{
		id:   id,
		deps: deps,
	}}

	var ret []ID
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == len(top.deps) {
			// all children resolved
			ret = r.resolve(top.id, top.deps)
			delete(onPath, top.id)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		dep := top.deps[top.next]
		top.next++

		if _, ok := r.lookupResolved(dep); ok {
			continue
		}
		if pos, ok := onPath[dep]; ok {
			cycle := slices.Clone(path[pos:])
			cycle = append(cycle, dep)
			return nil, &CycleError{
				Path: cycle,
			}
		}

		children, err := r.directDeps(dep, top.id)
		if err != nil {
			return nil, err
		}
		onPath[dep] = len(path)
		path = append(path, dep)
		stack = append(stack, &frame{
			id:   dep,
			deps: children,
		})
	}

	// the start frame completes last
	return ret, nil
}

// Check validates a call edge from caller to callee, caller 0 means an anonymous program.
func (r *Resolver) Check(caller ID, callee ID) error {
	if caller != 0 && caller == callee {
		return &CycleError{
			Path: []ID{caller, caller},
		}
	}
	closure, err := r.TransitiveDependencies(callee)
	if err != nil {
		return err
	}
	if caller == 0 {
		return nil
	}
	if _, found := slices.BinarySearch(closure, caller); found {
		return &CycleError{
			Path: append([]ID{caller}, r.pathTo(callee, caller)...),
		}
	}
	return nil
}

// pathTo finds a call path from one id to another over cached edges.
func (r *Resolver) pathTo(from ID, to ID) []ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent := map[ID]ID{
		from: from,
	}
	queue := []ID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			var path []ID
			for id != from {
				path = append(path, id)
				id = parent[id]
			}
			path = append(path, from)
			slices.Reverse(path)
			return path
		}
		for _, dep := range r.direct[id] {
			if _, ok := parent[dep]; ok {
				continue
			}
			parent[dep] = id
			queue = append(queue, dep)
		}
	}
	return []ID{from, to}
}
