package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("nack")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Busy, Busy},
		{"wrapped", &E{C: BusError, Op: "write MODE", Err: cause}, BusError},
		{"foreign", cause, Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Fatalf("%s: Of = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(BusError, "x", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
	cause := errors.New("nack")
	err := Wrap(BusError, "read STATUS", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to cause")
	}
	if got, want := err.Error(), "bus_error (read STATUS): nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if OpOf(err) != "read STATUS" {
		t.Fatalf("OpOf = %q", OpOf(err))
	}
}
