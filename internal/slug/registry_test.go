package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Unique(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "Intro", r.Unique("Intro"))
	assert.Equal(t, "Intro_0", r.Unique("Intro"))
	assert.Equal(t, "Intro_1", r.Unique("Intro!"))
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_SeedingRespected(t *testing.T) {
	r := NewRegistry()
	r.Observe("abc123")

	assert.Equal(t, "abc123_0", r.Unique("abc123!"))
	assert.Equal(t, "abc123_1", r.Unique("abc123"))
}

func TestRegistry_SkipsTakenSuffix(t *testing.T) {
	r := NewRegistry()
	r.Observe("Intro")
	r.Observe("Intro_0")

	assert.Equal(t, "Intro_1", r.Unique("Intro"))
}

func TestRegistry_UniqueAcrossManyCalls(t *testing.T) {
	r := NewRegistry()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		got := r.Unique("Lecture")
		assert.False(t, seen[got], "duplicate %q", got)
		seen[got] = true
	}
}

func TestRegistry_Rename(t *testing.T) {
	r := NewRegistry()

	r.Rename("Intro", "d750387a715f4c0e981efebe128ff754")
	r.Rename("same", "same")

	assert.Equal(t, map[string]string{"Intro": "d750387a715f4c0e981efebe128ff754"}, r.Mapping())
}

func TestRegistry_RenameChainKeepsOriginal(t *testing.T) {
	r := NewRegistry()

	r.Rename("first", "d750387a715f4c0e981efebe128ff754")
	r.Rename("second", "first")

	assert.Equal(t, map[string]string{"second": "d750387a715f4c0e981efebe128ff754"}, r.Mapping())
}

func TestRegistry_MappingIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Rename("a", "b")

	m := r.Mapping()
	m["x"] = "y"

	assert.Len(t, r.Mapping(), 1)
}
