package schemaload

import (
	"strings"

	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/jsontree"
)

// identityFields are stripped from an imported fragment before it is
// merged, so imported content never carries foreign identity metadata.
var identityFields = []string{"min_manifest_version", "max_manifest_version", "namespace", "id"}

// ImportResolver replaces $import placeholders across a loaded
// namespace set. Imports whose target id matches a skip prefix
// (manifest-base types) are left untouched.
type ImportResolver struct {
	diag         *diag.Reporter
	skipPrefixes []string
	// active guards against import chains that reference themselves.
	active map[string]bool
}

// DefaultImportSkipPrefixes covers manifest-base imports, which are
// deliberately not resolved.
var DefaultImportSkipPrefixes = []string{"manifest."}

func NewImportResolver(reporter *diag.Reporter, skipPrefixes []string) *ImportResolver {
	if skipPrefixes == nil {
		skipPrefixes = DefaultImportSkipPrefixes
	}
	return &ImportResolver{diag: reporter, skipPrefixes: skipPrefixes}
}

// Resolve replaces $import placeholders in every definition in place.
// Missing targets are reported and the placeholder is left as-is.
func (r *ImportResolver) Resolve(defs []Definition) {
	r.active = map[string]bool{}
	for _, def := range defs {
		r.walk(map[string]any(def), defs)
	}
}

func (r *ImportResolver) walk(v any, defs []Definition) {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			r.walk(item, defs)
		}
	case map[string]any:
		r.resolveNode(x, defs)
		for _, k := range jsontree.SortedKeys(x) {
			r.walk(x[k], defs)
		}
	}
}

func (r *ImportResolver) resolveNode(node map[string]any, defs []Definition) {
	id, ok := node["$import"].(string)
	if !ok {
		return
	}
	if r.skipImport(id) {
		return
	}
	if r.active[id] {
		// self-referential import chain; leave the placeholder
		return
	}
	target := FindDefinition(defs, id)
	if target == nil {
		r.diag.Warnf("unresolvable $import %q", id)
		return
	}
	fragment := jsontree.DeepClone(target).(map[string]any)
	for _, f := range identityFields {
		delete(fragment, f)
	}
	delete(node, "$import")
	jsontree.MergeInto(node, fragment)

	// merged content may itself contain imports
	r.active[id] = true
	r.resolveNode(node, defs)
	delete(r.active, id)
}

func (r *ImportResolver) skipImport(id string) bool {
	for _, prefix := range r.skipPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// FindDefinition searches every definition recursively for an object
// whose "namespace" or "id" field equals id, returning the first match
// in definition order.
func FindDefinition(defs []Definition, id string) map[string]any {
	for _, def := range defs {
		if found := findInValue(map[string]any(def), id); found != nil {
			return found
		}
	}
	return nil
}

// FindInDefinition searches a single definition recursively for an
// object whose "namespace" or "id" field equals id.
func FindInDefinition(def Definition, id string) map[string]any {
	return findInValue(map[string]any(def), id)
}

func findInValue(v any, id string) map[string]any {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if found := findInValue(item, id); found != nil {
				return found
			}
		}
	case map[string]any:
		if s, ok := x["namespace"].(string); ok && s == id {
			return x
		}
		if s, ok := x["id"].(string); ok && s == id {
			return x
		}
		for _, k := range jsontree.SortedKeys(x) {
			if found := findInValue(x[k], id); found != nil {
				return found
			}
		}
	}
	return nil
}
