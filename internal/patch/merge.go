package patch

import "reflect"

// mergeInto folds one allOf member into the accumulator schema. Reference
// members are skipped wholesale: they cannot be merged without resolution,
// which is out of scope. Properties merge last-write-wins (merge order is
// allOf declaration order), required merges as a set union preserving
// first-seen order, and every other key copies only when the accumulator
// does not already have it. The asymmetry is load-bearing: it keeps the
// merged output deterministic regardless of member iteration.
func mergeInto(target map[string]any, source any) {
	src, ok := source.(map[string]any)
	if !ok {
		return
	}
	if _, isRef := src["$ref"]; isRef {
		return
	}

	if srcProps, ok := src["properties"].(map[string]any); ok {
		if targetProps, ok := target["properties"].(map[string]any); ok {
			for name, prop := range srcProps {
				targetProps[name] = prop
			}
		}
	}

	if srcRequired, ok := src["required"].([]any); ok {
		existing, present := target["required"]
		if !present {
			existing = []any{}
		}
		if targetRequired, ok := existing.([]any); ok {
			for _, field := range srcRequired {
				if !containsValue(targetRequired, field) {
					targetRequired = append(targetRequired, field)
				}
			}
			target["required"] = targetRequired
		}
	}

	for key, value := range src {
		if key == "properties" || key == "required" {
			continue
		}
		if _, exists := target[key]; !exists {
			target[key] = value
		}
	}
}

// containsValue reports whether values already holds v. Required entries are
// strings in practice, but the tree is untyped, so compare structurally.
func containsValue(values []any, v any) bool {
	for _, existing := range values {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}
