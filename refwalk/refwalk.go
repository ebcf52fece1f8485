// Package refwalk performs the single depth-first walk that resolves
// $ref placeholders inside a namespace and collects every reachable
// entry as a dotted path.
//
// Paths have the shape ns.entryType.entryName[.subType.subName]*: the
// walk resets the path at a "namespace" field, extends it by the "id"
// or "name" of each object and by each map key it descends through,
// and leaves it unchanged across array elements. Values under an
// "enum" key are collected as <path>.<literal>.
//
// Reference resolution is cycle-safe: a visited set of $ref values per
// recursion path guarantees termination, leaving the innermost
// self-referential $ref in place.
package refwalk

import (
	"strings"

	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/jsontree"
	"github.com/thunderbird/webext-compat-data/schemaload"
)

// Entries maps dotted entry paths to the node (or enum literal) found
// at that path within one namespace.
type Entries map[string]any

// Resolver walks namespaces against a search universe. Not safe for
// concurrent use; create one per goroutine.
type Resolver struct {
	universe []schemaload.Definition
	diag     *diag.Reporter

	// refStack tracks $ref values being resolved along the current
	// recursion path, the cycle guard for self-referential refs.
	refStack map[string]bool
	current  string
}

func New(universe []schemaload.Definition, reporter *diag.Reporter) *Resolver {
	return &Resolver{universe: universe, diag: reporter}
}

// Collect resolves references inside ns in place and returns the entry
// map of every reachable path.
func (r *Resolver) Collect(ns schemaload.Definition) Entries {
	r.refStack = map[string]bool{}
	r.current = ns.Name()
	entries := Entries{}
	r.walk(map[string]any(ns), "", entries)
	return entries
}

func (r *Resolver) walk(v any, path string, entries Entries) {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			r.walk(item, path, entries)
		}
	case map[string]any:
		r.walkObject(x, path, entries)
	}
}

func (r *Resolver) walkObject(node map[string]any, path string, entries Entries) {
	if s, ok := node["namespace"].(string); ok {
		path = s
	} else if s, ok := node["id"].(string); ok {
		path = join(path, s)
	} else if s, ok := node["name"].(string); ok {
		path = join(path, s)
	}

	// Merging a resolved target can surface the target's own $ref
	// (an alias of an alias); keep resolving until the node carries
	// none, a cycle is hit, or a ref stays unresolved.
	var pushed []string
	for {
		ref, ok := node["$ref"].(string)
		if !ok || r.refStack[ref] || !r.resolveRef(node, ref, path) {
			break
		}
		pushed = append(pushed, ref)
		r.refStack[ref] = true
	}

	if path != "" {
		entries[path] = node
	}

	for _, k := range jsontree.SortedKeys(node) {
		val := node[k]
		if k == "enum" {
			r.collectEnum(val, join(path, k), entries)
			continue
		}
		switch jsontree.KindOf(val) {
		case jsontree.Object, jsontree.Array:
			r.walk(val, join(path, k), entries)
		}
	}

	for _, ref := range pushed {
		delete(r.refStack, ref)
	}
}

func (r *Resolver) collectEnum(v any, path string, entries Entries) {
	arr, ok := jsontree.AsSlice(v)
	if !ok {
		return
	}
	for _, item := range arr {
		switch x := item.(type) {
		case string:
			entries[join(path, x)] = x
		case map[string]any:
			// enum values may be {name, description} objects
			r.walkObject(x, path, entries)
		}
	}
}

// resolveRef merges the referenced definition into node and removes
// the placeholder. Search order: the namespace named in the ref, the
// current namespace, manifest, then every other namespace; first match
// by recursive namespace/id search wins. Returns false when the ref
// stays unresolved.
func (r *Resolver) resolveRef(node map[string]any, ref, path string) bool {
	target := r.lookup(ref)
	if target == nil {
		r.diag.Warnf("unresolvable $ref %q at %s", ref, path)
		return false
	}
	clone := jsontree.DeepClone(target).(map[string]any)
	delete(node, "$ref")
	jsontree.MergeInto(node, clone)
	delete(node, "id")
	return true
}

func (r *Resolver) lookup(ref string) map[string]any {
	id := ref
	explicit := ""
	if idx := strings.Index(ref, "."); idx > 0 {
		explicit = ref[:idx]
		id = ref[idx+1:]
	}

	searched := map[string]bool{}
	search := func(def schemaload.Definition) map[string]any {
		name := def.Name()
		if searched[name] {
			return nil
		}
		searched[name] = true
		return schemaload.FindInDefinition(def, id)
	}

	for _, name := range []string{explicit, r.current, schemaload.ManifestNamespace} {
		if name == "" {
			continue
		}
		for _, def := range r.universe {
			if def.Name() != name {
				continue
			}
			if found := search(def); found != nil {
				return found
			}
		}
	}
	for _, def := range r.universe {
		if found := search(def); found != nil {
			return found
		}
	}
	return nil
}

func join(prefix, next string) string {
	if prefix == "" {
		return next
	}
	return prefix + "." + next
}
