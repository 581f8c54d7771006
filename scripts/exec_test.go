package scripts

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/lodavm"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/modes"
	"github.com/reusee/loda/storages"
	"go.starlark.net/starlark"
)

const fibonacci = `
mov $1,1
lpb $0
  sub $0,1
  mov $2,$1
  add $1,$3
  mov $3,$2
lpe
mov $0,$3
`

func testScope(t *testing.T) dscope.Scope {
	return dscope.New(
		modes.ForTest(t),
		new(logs.Module),
		new(lodaconfigs.Module),
		new(storages.Module),
		new(lodavm.Module),
		new(Module),
	).Fork(
		func() storages.Store {
			return storages.NewMap(map[int64]string{
				45: fibonacci,
				2:  "seq $0,45\n",
			})
		},
	)
}

const script = `
fib = load_program(45)
big = evaluate(fib, 100)
first = terms(fib, 10)
closure = deps(2)
direct = direct_deps("seq $0,45\nseq $0,2\n")
cost = steps(fib, 3)
quicker = faster(fib, "mul $0,2", 3)
matched = verify(fib, [0, 1, 1, 2, 3])
called = evaluate_id(2, 12)
square = evaluate(parse("mul $0,$0"), 12345678901234567890)
print("fib", fib.id, fib.offset)
`

func TestExec(t *testing.T) {
	testScope(t).Call(func(
		exec Exec,
	) {
		out := new(bytes.Buffer)
		globals, err := exec(t.Context(), "test.star", script, out)
		if err != nil {
			t.Fatal(err)
		}

		expect := func(name string, want string) {
			t.Helper()
			if got := globals[name].String(); got != want {
				t.Fatalf("%s: got %s", name, got)
			}
		}
		expect("big", "354224848179261915075")
		expect("first", "[0, 1, 1, 2, 3, 5, 8, 13, 21, 34]")
		expect("closure", "[45]")
		expect("direct", "[2, 45]")
		expect("cost", "27")
		expect("quicker", "True")
		expect("matched", "5")
		expect("called", "144")
		expect("square", "152415787532388367501905199875019052100")

		if out.String() != "fib 45 0\n" {
			t.Fatalf("got %q", out.String())
		}
	})
}

func TestExecError(t *testing.T) {
	testScope(t).Call(func(
		exec Exec,
	) {
		_, err := exec(t.Context(), "test.star", `evaluate("mov $1,1\ndiv $1,0\n", 0)`, new(bytes.Buffer))
		if err == nil {
			t.Fatal("should error")
		}
		if !strings.Contains(err.Error(), "division by zero") {
			t.Fatalf("got %v", err)
		}

		_, err = exec(t.Context(), "test.star", `deps(1)`, new(bytes.Buffer))
		if err == nil {
			t.Fatal("should error")
		}
	})
}

func TestExecCancel(t *testing.T) {
	testScope(t).Call(func(
		exec Exec,
	) {
		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()
		_, err := exec(ctx, "loop.star", "while True:\n  pass\n", new(bytes.Buffer))
		if err == nil {
			t.Fatal("should error")
		}
	})
}

func TestFormatBuiltin(t *testing.T) {
	builtins := Builtins(lodavm.OpenSession(lodavm.DefaultConfig(), nil, nil))
	if _, ok := builtins["format"].(starlark.Callable); !ok {
		t.Fatalf("got %T", builtins["format"])
	}
	text, err := formatText("mov $1,1 ; x\nlpb $0\nsub $0,1\nlpe")
	if err != nil {
		t.Fatal(err)
	}
	if text != "mov $1,1\nlpb $0\n  sub $0,1\nlpe\n" {
		t.Fatalf("got %q", text)
	}
}
