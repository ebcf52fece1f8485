package compatdata

import (
	"fmt"
	"strings"

	"github.com/thunderbird/webext-compat-data/jsontree"
)

// CoverageError is the deterministic, multi-problem result of the
// final consistency pass. It signals the generated artifact needs a
// follow-up fix (an override or a schema change), not a code defect.
type CoverageError struct {
	Problems []string
}

func (e *CoverageError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "incomplete compatibility data"
	}
	return "incomplete compatibility data: " + strings.Join(e.Problems, "; ")
}

// CheckVendorCoverage walks the final tree and reports every compat
// leaf that lists support for other vendors but omits the target
// vendor. Returns nil when coverage is complete.
func CheckVendorCoverage(tree map[string]any, vendor string) error {
	var problems []string
	for _, ns := range jsontree.SortedKeys(tree) {
		if node, ok := jsontree.AsMap(tree[ns]); ok {
			checkNode(node, ns, vendor, &problems)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &CoverageError{Problems: problems}
}

func checkNode(node map[string]any, path, vendor string, problems *[]string) {
	if compat, ok := jsontree.AsMap(node["__compat"]); ok {
		if support, ok := jsontree.AsMap(compat["support"]); ok && len(support) > 0 {
			if _, ok := support[vendor]; !ok {
				*problems = append(*problems, fmt.Sprintf("%s: missing %s support entry", path, vendor))
			}
		}
	}
	for _, k := range jsontree.SortedKeys(node) {
		if k == "__compat" {
			continue
		}
		if child, ok := jsontree.AsMap(node[k]); ok {
			checkNode(child, path+"."+k, vendor, problems)
		}
	}
}
