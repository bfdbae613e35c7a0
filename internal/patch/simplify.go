package patch

// SimplifySchemas rewrites every named schema under components.schemas so that
// no composition keyword survives and enums carry no conflicting constraints.
// Returns the number of named schemas processed.
func SimplifySchemas(doc map[string]any) int {
	components, ok := doc["components"].(map[string]any)
	if !ok {
		return 0
	}
	schemas, ok := components["schemas"].(map[string]any)
	if !ok {
		return 0
	}
	for name, schema := range schemas {
		schemas[name] = Simplify(schema)
	}
	return len(schemas)
}

// enumConstraintKeys are string-shape constraints that are meaningless or
// contradictory next to an enum; the generator rejects the combination.
var enumConstraintKeys = []string{"maxLength", "minLength", "pattern", "format"}

// Simplify applies the normalization rules to one schema node and returns its
// replacement (often the same node, mutated). The rules are an ordered chain:
// enum cleanup runs first and falls through; each composition rule replaces
// the node, re-simplifies the replacement, and returns without trying the
// remaining rules; only composition-free nodes recurse structurally. Values
// that are not objects pass through untouched.
func Simplify(v any) any {
	node, ok := v.(map[string]any)
	if !ok {
		return v
	}

	if _, hasEnum := node["enum"]; hasEnum {
		for _, key := range enumConstraintKeys {
			delete(node, key)
		}
		if _, hasType := node["type"]; !hasType {
			node["type"] = "string"
		}
	}

	// allOf: fold all members into one object schema. If the merge yields no
	// properties (members were all references or empty), fall back to the
	// first non-reference member, else to a bare object. Either way the
	// replacement goes back through the full rule chain.
	if allOf, ok := node["allOf"].([]any); ok {
		merged := map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
		for _, member := range allOf {
			mergeInto(merged, member)
		}
		if props, _ := merged["properties"].(map[string]any); len(props) > 0 {
			return Simplify(merged)
		}
		return Simplify(firstConcrete(allOf))
	}

	// oneOf/anyOf: keep only the first listed member. Deliberately lossy; the
	// generator needs one concrete shape, not a union.
	if oneOf, ok := node["oneOf"].([]any); ok && len(oneOf) > 0 {
		return Simplify(oneOf[0])
	}
	if anyOf, ok := node["anyOf"].([]any); ok && len(anyOf) > 0 {
		return Simplify(anyOf[0])
	}

	if props, ok := node["properties"].(map[string]any); ok {
		for name, prop := range props {
			props[name] = Simplify(prop)
		}
	}
	if items, ok := node["items"]; ok {
		node["items"] = Simplify(items)
	}
	if additional, ok := node["additionalProperties"].(map[string]any); ok {
		node["additionalProperties"] = Simplify(additional)
	}

	return node
}

// firstConcrete returns the first allOf member that is not a bare reference,
// or a fresh object-typed schema when every member is one.
func firstConcrete(members []any) any {
	for _, member := range members {
		if m, ok := member.(map[string]any); ok {
			if _, isRef := m["$ref"]; isRef {
				continue
			}
		}
		return member
	}
	return map[string]any{"type": "object"}
}
