// Package notation determines which physical JSON shape encodes a
// logical sub-parameter inside the compatibility tree. The upstream
// corpus mixes four incompatible encodings for "a named sub-parameter
// of a function parameter": nested children, flat same-level siblings,
// "<name>_value" suffixed siblings, and
// "<parentKey>_<name>_parameter" suffixed siblings.
//
// Detection is deterministic given identical inputs; the only state is
// the injected allow-lists.
package notation

import (
	"strings"

	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/jsontree"
)

// Kind is the detected notation.
type Kind int

const (
	// Nested is the default: a normal child of the current entry.
	Nested Kind = iota
	// Flat encodes the parameter as a same-level sibling key.
	Flat
	// ValueSuffix encodes the parameter as "<name>_value" on the
	// grandparent scope.
	ValueSuffix
	// ParameterSuffix encodes the parameter as
	// "<parentKey>_<name>_parameter" on the grandparent scope.
	ParameterSuffix
)

func (k Kind) String() string {
	switch k {
	case Flat:
		return "flat"
	case ValueSuffix:
		return "_value"
	case ParameterSuffix:
		return "_parameter"
	default:
		return "nested"
	}
}

// Result names the container and key the caller should mutate.
type Result struct {
	Kind  Kind
	Key   string
	Scope map[string]any
}

// Lists holds the static allow-lists governing ambiguous flat-notation
// cases. Confirmed entries are dotted-path prefixes known to genuinely
// use flat notation; FalsePositives are dotted paths known to merely
// look like it.
type Lists struct {
	ConfirmedFlat  []string
	FalsePositives []string
}

// Detector applies the notation checks in fixed order. Immutable after
// construction.
type Detector struct {
	lists Lists
	diag  *diag.Reporter
}

func New(lists Lists, reporter *diag.Reporter) *Detector {
	return &Detector{lists: lists, diag: reporter}
}

// Detect inspects name against its immediate container (entry), the
// container's parent and the parent's key name, returning the physical
// target to mutate. path is the full dotted path of the sub-entry,
// used for allow-list matching and diagnostics. noFlatCheck disables
// flat-notation confirmation for this pass.
//
// Checks run in order _parameter, _value, flat; a later match
// overwrites an earlier one (logged as mixed notations when the
// earlier match was live). The default is nested.
func (d *Detector) Detect(name string, entry, parent map[string]any, parentKey, path string, noFlatCheck bool) Result {
	res := Result{Kind: Nested, Key: name, Scope: entry}

	if parent == nil {
		return res
	}

	suffixed := parentKey + "_" + name + "_parameter"
	if _, ok := parent[suffixed]; ok {
		res = Result{Kind: ParameterSuffix, Key: suffixed, Scope: parent}
	}

	if hasValueSuffixedKey(parent) {
		if res.Kind != Nested {
			d.diag.Warnf("mixed notations at %s: %s and %s", path, res.Kind, ValueSuffix)
		}
		res = Result{Kind: ValueSuffix, Key: name + "_value", Scope: parent}
	}

	if _, ok := parent[name]; ok {
		switch {
		case noFlatCheck || d.confirmedFlat(path):
			if res.Kind != Nested {
				d.diag.Warnf("mixed notations at %s: %s and %s", path, res.Kind, Flat)
			}
			res = Result{Kind: Flat, Key: name, Scope: parent}
		case d.knownFalsePositive(path):
			// confirmed non-flat, nothing to report
		default:
			d.diag.Warnf("unconfirmed flat notation usage at %s", path)
		}
	}

	return res
}

// confirmedFlat reports whether path length- and prefix-matches an
// allow-list entry: the entry is either the path itself or a strict
// dotted prefix of it.
func (d *Detector) confirmedFlat(path string) bool {
	for _, prefix := range d.lists.ConfirmedFlat {
		if path == prefix {
			return true
		}
		if len(path) > len(prefix) && strings.HasPrefix(path, prefix) && path[len(prefix)] == '.' {
			return true
		}
	}
	return false
}

func (d *Detector) knownFalsePositive(path string) bool {
	for _, p := range d.lists.FalsePositives {
		if p == path {
			return true
		}
	}
	return false
}

func hasValueSuffixedKey(m map[string]any) bool {
	for _, k := range jsontree.SortedKeys(m) {
		if strings.HasSuffix(k, "_value") {
			return true
		}
	}
	return false
}
