package deps

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func graph(edges map[ID][]ID) Edges {
	return func(id ID) ([]ID, error) {
		deps, ok := edges[id]
		if !ok {
			return nil, ErrNotFound
		}
		return deps, nil
	}
}

func TestTransitive(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {2},
		2: {3},
		3: {},
	}))

	direct, err := r.DirectDependencies(1)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(direct, []ID{2}) {
		t.Fatalf("got %v", direct)
	}

	all, err := r.TransitiveDependencies(1)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(all, []ID{2, 3}) {
		t.Fatalf("got %v", all)
	}

	leaf, err := r.TransitiveDependencies(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(leaf) != 0 {
		t.Fatalf("got %v", leaf)
	}
}

func TestDiamond(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {2, 3},
		2: {4},
		3: {4, 4},
		4: {},
	}))
	all, err := r.TransitiveDependencies(1)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(all, []ID{2, 3, 4}) {
		t.Fatalf("got %v", all)
	}
}

func TestSelfCycle(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {1},
	}))
	_, err := r.TransitiveDependencies(1)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(cycle.Path, []ID{1, 1}) {
		t.Fatalf("got %v", cycle.Path)
	}
}

func TestLongCycle(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {2},
		2: {3},
		3: {1},
	}))
	_, err := r.TransitiveDependencies(1)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(cycle.Path, []ID{1, 2, 3, 1}) {
		t.Fatalf("got %v", cycle.Path)
	}
	if cycle.Error() != "cyclic dependency: A000001 -> A000002 -> A000003 -> A000001" {
		t.Fatalf("got %s", cycle.Error())
	}
}

func TestCycleBelowStart(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {2},
		2: {3},
		3: {2},
	}))
	_, err := r.TransitiveDependencies(1)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(cycle.Path, []ID{2, 3, 2}) {
		t.Fatalf("got %v", cycle.Path)
	}
}

func TestMissing(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {2},
		2: {5},
	}))
	_, err := r.TransitiveDependencies(1)
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v", err)
	}
	if missing.ID != 5 || missing.From != 2 {
		t.Fatalf("got %+v", missing)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal()
	}
}

func TestEdgeError(t *testing.T) {
	bad := errors.New("bad")
	r := NewResolver(func(id ID) ([]ID, error) {
		return nil, bad
	})
	_, err := r.TransitiveDependencies(1)
	if !errors.Is(err, bad) {
		t.Fatalf("got %v", err)
	}
}

func TestDeepChain(t *testing.T) {
	const depth = 3000
	r := NewResolver(func(id ID) ([]ID, error) {
		if id == depth {
			return nil, nil
		}
		return []ID{id + 1}, nil
	})
	all, err := r.TransitiveDependencies(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != depth-1 {
		t.Fatalf("got %d", len(all))
	}
}

func TestCheck(t *testing.T) {
	r := NewResolver(graph(map[ID][]ID{
		1: {2},
		2: {3},
		3: {},
		4: {5},
		5: {6},
		6: {4},
	}))

	if err := r.Check(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := r.Check(0, 1); err != nil {
		t.Fatal(err)
	}

	var cycle *CycleError
	if err := r.Check(3, 3); !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}

	// 3 calling 1 closes 1 -> 2 -> 3 -> 1
	err := r.Check(3, 1)
	if !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(cycle.Path, []ID{3, 1, 2, 3}) {
		t.Fatalf("got %v", cycle.Path)
	}

	if err := r.Check(0, 4); !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}
}

func TestConcurrent(t *testing.T) {
	edges := make(map[ID][]ID)
	for i := ID(1); i < 200; i++ {
		edges[i] = []ID{i + 1, (i*7)%200 + 200}
	}
	for i := ID(200); i < 400; i++ {
		edges[i] = nil
	}
	r := NewResolver(graph(edges))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ID(i%199 + 1)
			all, err := r.TransitiveDependencies(id)
			if err != nil {
				errs <- err
				return
			}
			if slices.Contains(all, id) {
				errs <- fmt.Errorf("closure of %d contains itself", id)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestParallelLoads(t *testing.T) {
	var loading atomic.Int64
	both := make(chan struct{})
	var once sync.Once
	r := NewResolver(func(id ID) ([]ID, error) {
		if loading.Add(1) == 2 {
			once.Do(func() {
				close(both)
			})
		}
		select {
		case <-both:
			return nil, nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("loads did not overlap")
		}
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = r.TransitiveDependencies(ID(i + 1))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestSharedLoad(t *testing.T) {
	var loads atomic.Int64
	release := make(chan struct{})
	r := NewResolver(func(id ID) ([]ID, error) {
		loads.Add(1)
		<-release
		return []ID{id + 1}, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.DirectDependencies(1); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := loads.Load(); n != 1 {
		t.Fatalf("loaded %d times", n)
	}
}
