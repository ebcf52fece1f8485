package compatdata

// TierKind classifies how a namespace's support is derived.
type TierKind int

const (
	// Reimplemented namespaces are re-authored by the target: each
	// upstream entry must be checked against the target's own schema.
	Reimplemented TierKind = iota
	// Supported namespaces are inherited as-is; every entry is
	// asserted supported.
	Supported
	// Unsupported namespaces are absent from the target entirely.
	Unsupported
)

// Classification is the immutable table naming which namespaces are
// wholly unsupported, wholly reimplemented, or supported as-is.
// Namespaces not listed anywhere default to Reimplemented, the
// conservative choice: presence is verified against the target's own
// schema instead of being assumed.
type Classification struct {
	Unsupported   []string `yaml:"unsupported" json:"unsupported,omitempty"`
	Reimplemented []string `yaml:"reimplemented" json:"reimplemented,omitempty"`
	Supported     []string `yaml:"supported" json:"supported,omitempty"`
}

// Kind returns the classification of a namespace.
func (c Classification) Kind(namespace string) TierKind {
	if contains(c.Unsupported, namespace) {
		return Unsupported
	}
	if contains(c.Supported, namespace) {
		return Supported
	}
	return Reimplemented
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
