package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newAccumulator() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func TestMergeInto_PropertiesLastWriteWinsRequiredUnions(t *testing.T) {
	assert := assert.New(t)

	target := newAccumulator()
	a := map[string]any{
		"properties": map[string]any{"x": float64(1)},
		"required":   []any{"a"},
	}
	b := map[string]any{
		"properties": map[string]any{"x": float64(2)},
		"required":   []any{"b"},
	}

	mergeInto(target, a)
	mergeInto(target, b)

	assert.Equal(map[string]any{"x": float64(2)}, target["properties"])
	assert.Equal([]any{"a", "b"}, target["required"])
}

func TestMergeInto_SkipsReferences(t *testing.T) {
	target := newAccumulator()

	mergeInto(target, map[string]any{
		"$ref":       "#/components/schemas/zone",
		"properties": map[string]any{"ignored": map[string]any{}},
		"required":   []any{"ignored"},
	})

	assert.Empty(t, target["properties"])
	assert.NotContains(t, target, "required")
}

func TestMergeInto_OtherKeysFirstWriteWins(t *testing.T) {
	assert := assert.New(t)

	target := newAccumulator()
	mergeInto(target, map[string]any{"description": "first", "example": "one"})
	mergeInto(target, map[string]any{"description": "second", "title": "late"})

	assert.Equal("first", target["description"])
	assert.Equal("one", target["example"])
	assert.Equal("late", target["title"])
	// The accumulator's own type is never displaced.
	mergeInto(target, map[string]any{"type": "string"})
	assert.Equal("object", target["type"])
}

func TestMergeInto_RequiredDeduplicatesPreservingOrder(t *testing.T) {
	target := newAccumulator()

	mergeInto(target, map[string]any{"required": []any{"id", "name"}})
	mergeInto(target, map[string]any{"required": []any{"name", "zone", "id"}})

	assert.Equal(t, []any{"id", "name", "zone"}, target["required"])
}

func TestMergeInto_NonObjectSourcesIgnored(t *testing.T) {
	target := newAccumulator()

	assert.NotPanics(t, func() {
		mergeInto(target, "string member")
		mergeInto(target, nil)
		mergeInto(target, []any{"x"})
	})
	assert.Empty(t, target["properties"])
}
