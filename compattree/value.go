package compattree

import "regexp"

// version_added values are a union: boolean support flags or dotted
// version strings ("78", "102.3"). Anything else is treated as unset.

var versionRe = regexp.MustCompile(`^\d+(?:\.\d+)*$`)

// IsVersionString reports whether v is a dotted numeric version string.
func IsVersionString(v any) bool {
	s, ok := v.(string)
	return ok && versionRe.MatchString(s)
}

// Truthy reports whether v asserts support: boolean true or a
// non-empty version string. false, nil and empty strings are falsy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	default:
		return false
	}
}

// Equal compares two version_added values semantically: equal booleans
// or identical strings. Mismatched shapes are never equal, so a
// version string is always distinct from a bare true.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case nil:
		return b == nil
	default:
		return false
	}
}
