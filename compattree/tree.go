// Package compattree builds and minimizes the output compatibility
// tree. Nodes mirror schema entry paths and carry an optional
// __compat.support.<vendor>.version_added leaf; a node with
// version_added false asserts the whole subtree is unsupported.
package compattree

import (
	"strings"

	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/jsontree"
	"github.com/thunderbird/webext-compat-data/notation"
)

// Tree is the output compatibility tree, keyed by namespace at the top
// level. It is exclusively owned by one generation run.
type Tree map[string]any

var entryTypes = map[string]bool{
	"functions":  true,
	"events":     true,
	"properties": true,
	"types":      true,
}

var subTypes = map[string]bool{
	"properties": true,
	"parameters": true,
	"enum":       true,
}

// Updater applies expected support values to the tree, locating nodes
// through the notation detector. Not safe for concurrent use.
type Updater struct {
	vendor   string
	detector *notation.Detector
	diag     *diag.Reporter
}

func NewUpdater(vendor string, detector *notation.Detector, reporter *diag.Reporter) *Updater {
	return &Updater{vendor: vendor, detector: detector, diag: reporter}
}

// Update walks the dotted schema entry path against the tree, creating
// intermediate containers on demand, and applies desired at each
// materialized node. Type segments (functions, parameters, ...) are
// grouping markers and are not materialized; the tree nests
// ns.member.param with notation-resolved keys from the first parameter
// level onward.
func (u *Updater) Update(tree Tree, path string, desired any, noFlatCheck bool) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 || segs[0] == "" {
		return
	}

	scope := map[string]any(tree)
	key := segs[0]
	i := 0
	for {
		terminal := i == len(segs)-1
		node := u.applyAt(scope, key, desired, terminal)
		if terminal || node == nil {
			return
		}

		typeSeg := segs[i+1]
		if i+2 > len(segs)-1 {
			// path ends on a grouping key
			return
		}
		if !allowedType(i, typeSeg) {
			// grouping keys outside compat semantics stop the walk
			return
		}
		nameSeg := segs[i+2]
		if nameSeg == "callback" {
			return
		}

		nextScope, nextKey := node, nameSeg
		if i >= 2 && typeSeg != "enum" {
			subPath := strings.Join(segs[:i+3], ".")
			res := u.detector.Detect(nameSeg, node, scope, key, subPath, noFlatCheck)
			nextScope, nextKey = res.Scope, res.Key
		}
		scope, key = nextScope, nextKey
		i += 2
	}
}

// applyAt applies the per-node update policy at scope[key] and returns
// the node to keep descending into, or nil when the walk must stop.
func (u *Updater) applyAt(scope map[string]any, key string, desired any, terminal bool) map[string]any {
	node, exists := jsontree.AsMap(scope[key])

	if !Truthy(desired) {
		if terminal {
			// unsupported is terminal and absorbing: erase any
			// previously built children
			scope[key] = u.unsupportedLeaf()
			return nil
		}
		if !exists {
			// create as unsupported so deeper explicit supported
			// entries can still override it
			leaf := u.unsupportedLeaf()
			scope[key] = leaf
			return leaf
		}
		return node
	}

	if !exists {
		node = map[string]any{}
		scope[key] = node
	}
	current, set := u.supportValue(node)
	if !set || !Truthy(current) {
		// covers unset and an explicit false; a non-false truthy
		// value is never downgraded
		u.setSupport(node, desired)
	}
	return node
}

func (u *Updater) unsupportedLeaf() map[string]any {
	return map[string]any{
		"__compat": map[string]any{
			"support": map[string]any{
				u.vendor: map[string]any{"version_added": false},
			},
		},
	}
}

func (u *Updater) supportValue(node map[string]any) (any, bool) {
	compat, ok := jsontree.AsMap(node["__compat"])
	if !ok {
		return nil, false
	}
	support, ok := jsontree.AsMap(compat["support"])
	if !ok {
		return nil, false
	}
	vendor, ok := jsontree.AsMap(support[u.vendor])
	if !ok {
		return nil, false
	}
	v, ok := vendor["version_added"]
	return v, ok
}

// setSupport sets the vendor's support entry in place, preserving
// entries for other vendors.
func (u *Updater) setSupport(node map[string]any, value any) {
	compat, ok := jsontree.AsMap(node["__compat"])
	if !ok {
		compat = map[string]any{}
		node["__compat"] = compat
	}
	support, ok := jsontree.AsMap(compat["support"])
	if !ok {
		support = map[string]any{}
		compat["support"] = support
	}
	support[u.vendor] = map[string]any{"version_added": value}
}

func allowedType(i int, typeSeg string) bool {
	if i == 0 {
		return entryTypes[typeSeg]
	}
	return subTypes[typeSeg]
}
