package compattree

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/thunderbird/webext-compat-data/jsontree"
	"github.com/thunderbird/webext-compat-data/stablejson"
)

// Nodes at or below this depth (namespaces and their members) are
// never collapsed; only deeper parameter-level nodes are candidates.
const minReduceDepth = 2

// Reduce collapses child nodes whose support data is redundant with
// their parent's, bottom-up. A child is deleted when every descriptor
// in its subtree is the single descriptor {"<vendor>": value} equal to
// the parent's own. Reduce is idempotent: re-reducing its output
// deletes nothing further.
func Reduce(tree Tree, vendor string) {
	for _, ns := range jsontree.SortedKeys(tree) {
		if node, ok := jsontree.AsMap(tree[ns]); ok {
			reduceNode(node, vendor, 1)
		}
	}
}

// reduceNode returns the set of all distinct canonical support
// descriptor strings seen in the subtree rooted at node.
func reduceNode(node map[string]any, vendor string, depth int) *set.Set[string] {
	descriptors := set.New[string](4)

	own := ""
	ownSingleVendor := false
	if support := supportMap(node); support != nil {
		if s, err := stablejson.String(support); err == nil {
			own = s
			descriptors.Insert(s)
			_, hasVendor := support[vendor]
			ownSingleVendor = hasVendor && len(support) == 1
		}
	}

	for _, k := range jsontree.SortedKeys(node) {
		if k == "__compat" {
			continue
		}
		child, ok := jsontree.AsMap(node[k])
		if !ok {
			continue
		}
		childSet := reduceNode(child, vendor, depth+1)
		if depth+1 > minReduceDepth && ownSingleVendor &&
			childSet.Size() == 1 && childSet.Contains(own) {
			delete(node, k)
		}
		descriptors.InsertSlice(childSet.Slice())
	}
	return descriptors
}

func supportMap(node map[string]any) map[string]any {
	compat, ok := jsontree.AsMap(node["__compat"])
	if !ok {
		return nil
	}
	support, ok := jsontree.AsMap(compat["support"])
	if !ok || len(support) == 0 {
		return nil
	}
	return support
}
