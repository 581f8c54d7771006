package scripts

import (
	"math/big"
	"testing"

	"github.com/reusee/loda/bigs"
	"go.starlark.net/starlark"
)

func TestToStarlarkValue(t *testing.T) {
	type stats struct {
		Steps  int64
		hidden int
	}
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"string", "mov", starlark.String("mov")},
		{"int", 42, starlark.MakeInt(42)},
		{"int64", int64(-7), starlark.MakeInt64(-7)},
		{"uint64", uint64(7), starlark.MakeUint64(7)},
		{"value", bigs.MustParse("123456789012345678901234567890"), starlark.MakeBigInt(huge)},
		{"zero value", bigs.Value{}, starlark.MakeInt(0)},
		{"big", huge, starlark.MakeBigInt(huge)},
		{"values", []bigs.Value{bigs.One, bigs.MinOne}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.MakeInt(-1)})},
		{"ids", []int64{40, 45}, starlark.NewList([]starlark.Value{starlark.MakeInt(40), starlark.MakeInt(45)})},
		{"struct", stats{Steps: 3}, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("Steps"), starlark.MakeInt(3))
			return d
		}()},
		{"pointer", &stats{Steps: 4}, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("Steps"), starlark.MakeInt(4))
			return d
		}()},
		{"map", map[string]any{"id": 45}, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("id"), starlark.MakeInt(45))
			return d
		}()},
		{"nil pointer", (*stats)(nil), starlark.None},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := toStarlarkValue(tc.input)
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Errorf("toStarlarkValue(%#v) = %v, want %v", tc.input, actual, tc.expected)
			}
		})
	}

	t.Run("panic on unsupported type", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("toStarlarkValue did not panic on unsupported type")
			}
		}()
		toStarlarkValue(make(chan bool))
	})
}

func TestToValue(t *testing.T) {
	v, err := toValue("f", starlark.MakeInt64(-5))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "-5" {
		t.Fatalf("got %v", v)
	}
	if _, err := toValue("f", starlark.String("5")); err == nil {
		t.Fatal("should error")
	}
	vs, err := toValues("f", starlark.Tuple{starlark.MakeInt(1), starlark.MakeInt(2)})
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 2 || vs[1].String() != "2" {
		t.Fatalf("got %v", vs)
	}
}

func TestProgramValue(t *testing.T) {
	program, err := toProgram("f", starlark.String("; A000005: x\nseq $0,3\n"))
	if err != nil {
		t.Fatal(err)
	}
	value := toStarlarkValue(program).(*Program)
	id, err := value.Attr("id")
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "5" {
		t.Fatalf("got %v", id)
	}
	deps, err := value.Attr("deps")
	if err != nil {
		t.Fatal(err)
	}
	if deps.String() != "[3]" {
		t.Fatalf("got %v", deps)
	}
	if missing, _ := value.Attr("nope"); missing != nil {
		t.Fatal()
	}
}
