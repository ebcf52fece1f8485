// Package overrides loads the maintainer override files and applies
// them on top of the generated compatibility tree, reporting the
// effective diff.
//
// Override files are sparse trees mirroring the output shape and may
// contain // comments; multiple files deep-merge in declaration order.
package overrides

import (
	"context"

	"github.com/TwiN/deepmerge"
	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"github.com/viant/afs"

	"github.com/thunderbird/webext-compat-data/compattree"
	"github.com/thunderbird/webext-compat-data/jsontree"
)

// Load reads and merges the override files at the given URLs. A
// missing or unreadable file is fatal; an empty URL list yields an
// empty override tree.
func Load(ctx context.Context, fs afs.Service, urls []string) (map[string]any, error) {
	var merged []byte
	for _, u := range urls {
		data, err := fs.DownloadWithURL(ctx, u)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read override file %v", u)
		}
		plain := jsonc.ToJSON(data)
		if merged == nil {
			merged = plain
			continue
		}
		merged, err = deepmerge.JSON(merged, plain)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to merge override file %v", u)
		}
	}
	if merged == nil {
		return map[string]any{}, nil
	}
	value, err := jsontree.Decode(merged)
	if err != nil {
		return nil, errors.Wrap(err, "malformed override file")
	}
	tree, ok := jsontree.AsMap(value)
	if !ok {
		return nil, errors.New("override file must be a JSON object")
	}
	return tree, nil
}

// Apply walks override and tree in lock-step, forcing override values
// into the generated tree. A generated version_added is replaced only
// when the override value differs and is not the no-op "current is a
// version string, override is boolean true": a string is more specific
// than a bare true and is preserved. Nodes absent from the generated
// tree are created. Returns the sparse diff actually applied.
func Apply(tree, override map[string]any) map[string]any {
	diff := map[string]any{}
	applyNode(tree, override, diff)
	if len(diff) == 0 {
		return map[string]any{}
	}
	return diff
}

func applyNode(node, override, diff map[string]any) {
	for _, k := range jsontree.SortedKeys(override) {
		ov, ok := jsontree.AsMap(override[k])
		if !ok {
			continue
		}
		if k == "__compat" {
			if compatDiff := applyCompat(node, ov); len(compatDiff) > 0 {
				diff["__compat"] = compatDiff
			}
			continue
		}
		child, ok := jsontree.AsMap(node[k])
		if !ok {
			child = map[string]any{}
			node[k] = child
		}
		childDiff := map[string]any{}
		applyNode(child, ov, childDiff)
		if len(childDiff) > 0 {
			diff[k] = childDiff
		}
	}
}

func applyCompat(node, overrideCompat map[string]any) map[string]any {
	overrideSupport, ok := jsontree.AsMap(overrideCompat["support"])
	if !ok {
		return nil
	}
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

	applied := map[string]any{}
	for _, vendor := range jsontree.SortedKeys(overrideSupport) {
		entry, ok := jsontree.AsMap(overrideSupport[vendor])
		if !ok {
			continue
		}
		value, ok := entry["version_added"]
		if !ok {
			continue
		}
		current := currentVersionAdded(support, vendor)
		if compattree.Equal(current, value) {
			continue
		}
		if compattree.IsVersionString(current) && value == true {
			// a bare true never replaces a version string
			continue
		}
		support[vendor] = map[string]any{"version_added": jsontree.DeepClone(value)}
		applied[vendor] = map[string]any{"version_added": value}
	}
	if len(applied) == 0 {
		return nil
	}
	return map[string]any{"support": applied}
}

func currentVersionAdded(support map[string]any, vendor string) any {
	entry, ok := jsontree.AsMap(support[vendor])
	if !ok {
		return nil
	}
	return entry["version_added"]
}
