package vars

import "testing"

func TestDerefOrZero(t *testing.T) {
	if v := DerefOrZero[int](nil); v != 0 {
		t.Fatalf("got %d", v)
	}
	n := 42
	if v := DerefOrZero(&n); v != 42 {
		t.Fatalf("got %d", v)
	}
}

func TestFirstNonZero(t *testing.T) {
	if v := FirstNonZero(0, 3, 5); v != 3 {
		t.Fatalf("got %d", v)
	}
	if v := FirstNonZero("", ""); v != "" {
		t.Fatalf("got %q", v)
	}
}

func TestParseBool(t *testing.T) {
	for str, want := range map[string]bool{
		"true": true,
		"Y":    true,
		"on":   true,
		"1":    true,
		"no":   false,
		"OFF":  false,
		"0":    false,
	} {
		v, err := ParseBool(str)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Fatalf("%s: got %v", str, v)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Fatal()
	}
}
