package fetchcore

import (
	"errors"
	"testing"
)

func TestIdentity(t *testing.T) {
	t.Run("Simple", func(t *testing.T) {
		id, err := NewIdentity("frob", "1.2.3")
		if err != nil {
			t.Fatal(err)
		}
		if got, want := id.String(), "frob@1.2.3"; got != want {
			t.Errorf("got: %q, want: %q", got, want)
		}
	})
	t.Run("Normalized", func(t *testing.T) {
		a, err := NewIdentity("frob", "1.2.3")
		if err != nil {
			t.Fatal(err)
		}
		b, err := NewIdentity("frob", "v1.2.3")
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Errorf("got: %v != %v, want equal", a, b)
		}
	})
	t.Run("BadVersion", func(t *testing.T) {
		_, err := NewIdentity("frob", "not-a-version")
		t.Log(err)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("got: %v, want: %v", err, ErrInvalid)
		}
	})
	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewIdentity("", "1.0.0")
		t.Log(err)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("got: %v, want: %v", err, ErrInvalid)
		}
	})
}
