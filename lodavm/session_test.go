package lodavm

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/loda/bigs"
	"github.com/reusee/loda/deps"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/modes"
	"github.com/reusee/loda/storages"
)

func TestCalls(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		45: fibonacci,
	}), nil)

	program := mustParse(t, "seq $0,45\nmul $0,2\n")
	res, err := session.Run(program, bigs.FromInt64(10))
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.String() != "110" {
		t.Fatalf("got %v", res.Value)
	}
	// callee steps count toward the caller
	if res.Steps != 65 {
		t.Fatalf("got %d", res.Steps)
	}

	v, err := session.EvaluateID(45, bigs.FromInt64(12))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "144" {
		t.Fatalf("got %v", v)
	}

	p, err := session.Program(45)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 45 {
		t.Fatalf("got %d", p.ID)
	}
}

func TestCallBudget(t *testing.T) {
	config := DefaultConfig()
	config.StepBudget = 50
	session := OpenSession(config, storages.NewMap(map[int64]string{
		45: fibonacci,
	}), nil)
	_, err := session.Evaluate(mustParse(t, "seq $0,45\n"), bigs.FromInt64(10))
	if !errors.Is(err, NonTerminating) {
		t.Fatalf("got %v", err)
	}
}

func TestCyclicDependency(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		1: "seq $0,2\n",
		2: "add $0,1\nseq $0,3\n",
		3: "seq $0,1\n",
		7: "seq $0,7\n",
	}), nil)

	_, err := session.EvaluateID(1, bigs.Zero)
	if !errors.Is(err, CyclicDependency) {
		t.Fatalf("got %v", err)
	}
	var e *EvalError
	if !errors.As(err, &e) {
		t.Fatalf("got %T", err)
	}
	if !slices.Equal(e.Cycle, []int64{1, 2, 3, 1}) {
		t.Fatalf("got %v", e.Cycle)
	}

	_, err = session.EvaluateID(7, bigs.Zero)
	if !errors.As(err, &e) || e.Kind != CyclicDependency {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(e.Cycle, []int64{7, 7}) {
		t.Fatalf("got %v", e.Cycle)
	}

	// an anonymous caller fails before running
	_, err = session.Run(mustParse(t, "mov $1,1\nseq $0,2\n"), bigs.Zero)
	if !errors.Is(err, CyclicDependency) {
		t.Fatalf("got %v", err)
	}

	_, err = session.TransitiveDependencies(3)
	var cycle *deps.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("got %v", err)
	}
}

func TestUnresolvedDependency(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		1: "seq $0,5\n",
	}), nil)

	_, err := session.Evaluate(mustParse(t, "seq $0,99\n"), bigs.Zero)
	if !errors.Is(err, UnresolvedDependency) {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, deps.ErrNotFound) {
		t.Fatalf("got %v", err)
	}

	_, err = session.EvaluateID(1, bigs.Zero)
	var missing *deps.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v", err)
	}
	if missing.ID != 5 || missing.From != 1 {
		t.Fatalf("got %+v", missing)
	}
	if !KindOf(err).Permanent() {
		t.Fatal()
	}
}

func TestStoredParseFailure(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		3: "foo $0\n",
	}), nil)
	_, err := session.EvaluateID(3, bigs.Zero)
	if !errors.Is(err, ParseFailure) {
		t.Fatalf("got %v", err)
	}
}

func TestMemoization(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		10: "mul $0,3\n",
	}), nil)
	a := mustParse(t, "seq $0,10\nadd $0,1\n")
	b := mustParse(t, "seq $0,10\nadd $0,2\n")

	v, err := session.Evaluate(a, bigs.FromInt64(4))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "13" {
		t.Fatalf("got %v", v)
	}
	v, err = session.Evaluate(b, bigs.FromInt64(4))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "14" {
		t.Fatalf("got %v", v)
	}

	stats := session.Stats()
	if stats.Computations != 1 {
		t.Fatalf("got %+v", stats)
	}
	if stats.Hits != 1 {
		t.Fatalf("got %+v", stats)
	}
}

func TestConcurrentSession(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		45: fibonacci,
		46: "seq $0,45\nadd $0,1\n",
	}), nil)
	program := mustParse(t, "seq $0,46\nseq $0,45\n")

	var wg sync.WaitGroup
	results := make([]string, 32)
	errs := make([]error, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := session.Evaluate(program, bigs.FromInt64(int64(i%4)))
			errs[i] = err
			results[i] = v.String()
		}()
	}
	wg.Wait()

	// fib(fib(n)+1) for n = 0..3
	want := []string{"1", "1", "1", "2"}
	for i, r := range results {
		if errs[i] != nil {
			t.Fatal(errs[i])
		}
		if r != want[i%4] {
			t.Fatalf("input %d: got %s", i%4, r)
		}
	}
}

func TestEvaluateRangePartial(t *testing.T) {
	session := OpenSession(DefaultConfig(), nil, nil)
	program := mustParse(t, "mov $1,3\nsub $1,$0\ndiv $0,$1\n")
	got, err := session.EvaluateRange(program, 0, 5)
	if !errors.Is(err, DivisionByZero) {
		t.Fatalf("got %v", err)
	}
	if !equalValues(got, values(0, 0, 2)) {
		t.Fatalf("got %v", got)
	}
}

func TestStepCostAndFaster(t *testing.T) {
	session := OpenSession(DefaultConfig(), nil, nil)
	installed := mustParse(t, `
mov $1,$0
mov $0,0
lpb $1
  sub $1,1
  add $0,2
lpe
`)
	candidate := mustParse(t, "mul $0,2\n")

	cost, err := session.StepCost(installed, 5)
	if err != nil {
		t.Fatal(err)
	}
	if cost != 55 {
		t.Fatalf("got %d", cost)
	}
	cost, err = session.StepCost(candidate, 5)
	if err != nil {
		t.Fatal(err)
	}
	if cost != 5 {
		t.Fatalf("got %d", cost)
	}

	faster, err := session.Faster(installed, candidate, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !faster {
		t.Fatal()
	}
	faster, err = session.Faster(candidate, installed, 5)
	if err != nil {
		t.Fatal(err)
	}
	if faster {
		t.Fatal()
	}
	// ties keep the installed program
	faster, err = session.Faster(candidate, candidate, 5)
	if err != nil {
		t.Fatal(err)
	}
	if faster {
		t.Fatal()
	}

	broken := mustParse(t, "mov $1,0\ndiv $0,$1\n")
	faster, err = session.Faster(broken, candidate, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !faster {
		t.Fatal()
	}
	if _, err := session.Faster(candidate, broken, 5); !errors.Is(err, DivisionByZero) {
		t.Fatalf("got %v", err)
	}
}

func TestVerify(t *testing.T) {
	session := OpenSession(DefaultConfig(), nil, nil)
	program := mustParse(t, halving)

	n, err := session.Verify(program, values(0, 1, 1, 2, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("got %d", n)
	}

	n, err = session.Verify(program, values(0, 1, 2))
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("got %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d", n)
	}
}

func TestDependencies(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		1: "seq $0,2\nseq $0,3\n",
		2: "seq $0,3\n",
		3: "add $0,1\n",
	}), nil)
	program, err := session.Program(1)
	if err != nil {
		t.Fatal(err)
	}
	if ids := session.DirectDependencies(program); !slices.Equal(ids, []int64{2, 3}) {
		t.Fatalf("got %v", ids)
	}
	ids, err := session.TransitiveDependencies(2)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []int64{3}) {
		t.Fatalf("got %v", ids)
	}
	v, err := session.EvaluateID(1, bigs.FromInt64(5))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "7" {
		t.Fatalf("got %v", v)
	}
}

func TestModule(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(logs.Module),
		new(lodaconfigs.Module),
		new(storages.Module),
		new(Module),
	).Fork(
		func() storages.Store {
			return storages.NewMap(map[int64]string{
				45: fibonacci,
			})
		},
		func() lodaconfigs.LoopMode {
			return "rollback"
		},
	).Call(func(
		config Config,
		newSession NewSession,
	) {
		if config.LoopMode != LoopRollback {
			t.Fatalf("got %v", config.LoopMode)
		}
		if config.StepBudget != DefaultStepBudget {
			t.Fatalf("got %v", config.StepBudget)
		}
		session := newSession()
		v, err := session.EvaluateID(45, bigs.FromInt64(20))
		if err != nil {
			t.Fatal(err)
		}
		if v.String() != "6765" {
			t.Fatalf("got %v", v)
		}
		if newSession() == session {
			t.Fatal("sessions should not be shared")
		}
	})
}

func TestNegativeCount(t *testing.T) {
	session := OpenSession(DefaultConfig(), nil, nil)
	program := mustParse(t, "add $0,1\n")
	if _, err := session.EvaluateRange(program, 0, -1); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("got %v", err)
	}
	if _, err := session.Terms(program, -3); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("got %v", err)
	}
	if _, err := session.StepCost(program, -1); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("got %v", err)
	}
	if _, err := session.Faster(program, program, -1); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("got %v", err)
	}
	got, err := session.Terms(program, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v %v", got, err)
	}
}

func TestFreshProgramsValidated(t *testing.T) {
	session := OpenSession(DefaultConfig(), storages.NewMap(map[int64]string{
		1: "seq $0,2\n",
		2: "seq $0,1\n",
		3: "add $0,1\n",
	}), nil)
	for range 3 {
		if _, err := session.Evaluate(mustParse(t, "seq $0,1\n"), bigs.Zero); !errors.Is(err, CyclicDependency) {
			t.Fatalf("got %v", err)
		}
		v, err := session.Evaluate(mustParse(t, "seq $0,3\n"), bigs.FromInt64(4))
		if err != nil {
			t.Fatal(err)
		}
		if v.String() != "5" {
			t.Fatalf("got %v", v)
		}
	}
}
