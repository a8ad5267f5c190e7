package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	t.Run("is a valid version 7 uuid", func(t *testing.T) {
		id := New()
		parsed, err := googleuuid.Parse(id)
		if err != nil {
			t.Fatalf("expected valid uuid, got %q: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Errorf("expected version 7, got %d", parsed.Version())
		}
		if parsed.Variant() != googleuuid.RFC4122 {
			t.Errorf("expected RFC4122 variant, got %v", parsed.Variant())
		}
	})

	t.Run("is strictly increasing", func(t *testing.T) {
		prev := New()
		for i := 0; i < 10000; i++ {
			id := New()
			if id <= prev {
				t.Fatalf("expected %q > %q", id, prev)
			}
			prev = id
		}
	})
}

func TestIsValid(t *testing.T) {
	if !IsValid(New()) {
		t.Error("generated id should be valid")
	}
	if IsValid("not-a-uuid") {
		t.Error("garbage should be invalid")
	}
}
