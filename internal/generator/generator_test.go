package generator_test

import (
	"regexp"
	"testing"

	"github.com/glizzus/cron-census/internal/generator"
)

func TestUUIDV4GeneratorNext(t *testing.T) {
	format := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	gen := generator.UUIDV4Generator{}

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id, err := gen.Next()
		if err != nil {
			t.Fatalf("Next() returned error: %v", err)
		}
		if !format.MatchString(id) {
			t.Fatalf("Next() = %q; want a v4 UUID", id)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("Next() repeated %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestStaticNext(t *testing.T) {
	gen := generator.Static[string]{Value: "pinned"}
	for i := 0; i < 3; i++ {
		id, err := gen.Next()
		if err != nil {
			t.Fatalf("Next() returned error: %v", err)
		}
		if id != "pinned" {
			t.Errorf("Next() = %q; want %q", id, "pinned")
		}
	}
}
