// Package schemaload reads WebExtension API schema files from source
// directories and resolves $import placeholders across the loaded
// namespace definitions.
//
// Each schema file is a JSON array of namespace objects. Fragments of
// the "manifest" namespace are scattered across many files; the loader
// merges them into a single synthetic namespace placed first in the
// returned list.
package schemaload

import (
	"context"
	"path"
	"sort"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"github.com/viant/afs"

	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/jsontree"
)

// ManifestNamespace is the namespace whose fragments are merged across
// schema files.
const ManifestNamespace = "manifest"

// Definition is a single namespace definition as decoded from a schema
// file. It is mutated in place by import and reference resolution.
type Definition map[string]any

// Name returns the namespace name, or "" for nested type definitions.
func (d Definition) Name() string {
	s, _ := d["namespace"].(string)
	return s
}

// Loader reads schema directories through an afs file service.
type Loader struct {
	fs   afs.Service
	diag *diag.Reporter
}

func New(fs afs.Service, reporter *diag.Reporter) *Loader {
	return &Loader{fs: fs, diag: reporter}
}

// Load reads every .json schema file under the given directory URLs,
// in sorted file order per directory, skipping file names listed in
// skip. I/O failures are fatal; malformed schema content is reported
// and skipped.
func (l *Loader) Load(ctx context.Context, dirs []string, skip []string) ([]Definition, error) {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	manifest := Definition{"namespace": ManifestNamespace}
	manifestSeen := false
	var defs []Definition

	for _, dir := range dirs {
		objects, err := l.fs.List(ctx, dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list schema directory %v", dir)
		}
		names := make([]string, 0, len(objects))
		byName := make(map[string]string, len(objects))
		for _, object := range objects {
			if object.IsDir() || path.Ext(object.Name()) != ".json" {
				continue
			}
			if skipped[object.Name()] {
				continue
			}
			names = append(names, object.Name())
			byName[object.Name()] = object.URL()
		}
		sort.Strings(names)

		for _, name := range names {
			data, err := l.fs.DownloadWithURL(ctx, byName[name])
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read schema file %v", byName[name])
			}
			// Schema files open with license comment lines; strip
			// comments before decoding.
			value, err := jsontree.Decode(jsonc.ToJSON(data))
			if err != nil {
				l.diag.Errorf("malformed schema file %s: %v", name, err)
				continue
			}
			arr, ok := jsontree.AsSlice(value)
			if !ok {
				l.diag.Errorf("schema file %s is not a JSON array of namespaces", name)
				continue
			}
			for _, item := range arr {
				def, ok := jsontree.AsMap(item)
				if !ok {
					l.diag.Errorf("schema file %s contains a non-object namespace entry", name)
					continue
				}
				if Definition(def).Name() == ManifestNamespace {
					l.mergeManifest(manifest, def, name)
					manifestSeen = true
					continue
				}
				defs = append(defs, Definition(def))
			}
		}
	}

	if manifestSeen {
		defs = append([]Definition{manifest}, defs...)
	}
	return defs, nil
}

// mergeManifest folds one manifest fragment into the synthetic
// manifest namespace. Array-valued keys concatenate in file order; a
// duplicate non-array key is a schema-authoring error and is dropped.
func (l *Loader) mergeManifest(manifest Definition, fragment map[string]any, fileName string) {
	for _, k := range jsontree.SortedKeys(fragment) {
		if k == "namespace" {
			continue
		}
		v := fragment[k]
		existing, ok := manifest[k]
		if !ok {
			manifest[k] = jsontree.DeepClone(v)
			continue
		}
		ea, eok := jsontree.AsSlice(existing)
		va, vok := jsontree.AsSlice(v)
		if eok && vok {
			merged := make([]any, 0, len(ea)+len(va))
			merged = append(merged, ea...)
			merged = append(merged, jsontree.DeepClone(va).([]any)...)
			manifest[k] = merged
			continue
		}
		l.diag.Errorf("manifest property %q in %s is not an array and cannot be merged", k, fileName)
	}
}
