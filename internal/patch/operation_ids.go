package patch

import "strings"

// httpMethods are the path-item keys that hold operations. Everything else
// under a path item (parameters, summary, servers) is metadata and must be
// left alone. Matching is exact and case-sensitive, per the OpenAPI spec.
var httpMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {},
	"options": {}, "head": {}, "patch": {}, "trace": {},
}

// slugReplacer turns a path template into an identifier-safe slug:
// separators become underscores and parameter braces vanish, so
// /zones/{zone_id}/dns_records slugs to zones_zone_id_dns_records.
var slugReplacer = strings.NewReplacer("/", "_", "{", "", "}", "", "-", "_")

// EnsureOperationIDs walks every operation under the document's paths and
// synthesizes a deterministic operationId for any that lack one, returning how
// many it added. Existing IDs are kept, so the pass is idempotent. Nodes that
// are not shaped like path items or operations are skipped silently; the
// document may legitimately hold non-operation siblings.
func EnsureOperationIDs(doc map[string]any) int {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return 0
	}
	added := 0
	for pathName, rawItem := range paths {
		item, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		for method, rawOp := range item {
			if _, isMethod := httpMethods[method]; !isMethod {
				continue
			}
			op, ok := rawOp.(map[string]any)
			if !ok {
				continue
			}
			if _, has := op["operationId"]; has {
				continue
			}
			op["operationId"] = method + "_" + slugReplacer.Replace(strings.TrimLeft(pathName, "/"))
			added++
		}
	}
	return added
}
