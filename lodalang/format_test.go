package lodalang

import (
	"testing"
)

func TestFormat(t *testing.T) {
	program, err := Parse("A000045.asm", sample)
	if err != nil {
		t.Fatal(err)
	}
	want := `; A000045: Fibonacci numbers
mov $1,1
lpb $0
  sub $0,1
  mov $2,$1
  add $1,$3
  mov $3,$2
lpe
mov $0,$3
`
	if got := program.String(); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		sample,
		"#offset -2\nmov $1,-3\nadd $$2,5\n",
		"lpb $1,$2\n  lpb $$3\n    clr $4,-2\n  lpe\n  nop\nlpe\n",
		"mul $0,123456789012345678901234567890\ncal $0,0\n",
		"",
	} {
		first, err := Parse("first", text)
		if err != nil {
			t.Fatal(err)
		}
		formatted := first.String()
		second, err := Parse("second", formatted)
		if err != nil {
			t.Fatalf("%q: %v", formatted, err)
		}
		if !first.Equal(second) {
			t.Fatalf("%q and %q differ", text, formatted)
		}
		if second.String() != formatted {
			t.Fatalf("got %q, then %q", formatted, second.String())
		}
	}
}

func TestEqual(t *testing.T) {
	a, err := Parse("a", "mov $1,1\nlpb $0\n  sub $0,1\nlpe\n")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("b", "\n\nmov $1,1 ; same\nlpb $0\nsub $0,1\nlpe\n")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatal()
	}
	c, err := Parse("c", "mov $1,1\nlpb $0\n  sub $0,2\nlpe\n")
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(c) {
		t.Fatal()
	}
}
