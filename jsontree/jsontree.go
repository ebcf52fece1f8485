// Package jsontree provides the shared JSON tree model the generator
// operates on: untyped trees decoded from schema and compatibility
// files, with kind tagging, deep cloning, and the merge rule used by
// import and reference resolution.
//
// Trees are plain map[string]any / []any values as produced by
// encoding/json. Mutating operations document whether they work in
// place; everything else returns new values.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
)

// Kind tags the JSON shape of a decoded value. Walk code switches on
// Kind exhaustively instead of scattering type assertions.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// KindOf returns the Kind of a decoded JSON value. Unrecognised Go
// types map to Null.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case float64, json.Number:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Null
	}
}

func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// SortedKeys returns the keys of m in ascending order. Every walk in
// this repository iterates sorted keys so results are deterministic.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeepClone returns a structurally independent copy of v. Scalars are
// shared (immutable); maps and slices are copied recursively.
func DeepClone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = DeepClone(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = DeepClone(val)
		}
		return out
	default:
		return x
	}
}

// MergeInto merges src into dst, mutating dst. Keys already present in
// dst win for scalar conflicts; arrays concatenate (dst elements
// first); objects merge recursively. Values copied from src are deep
// cloned so dst never aliases src.
func MergeInto(dst, src map[string]any) {
	for _, k := range SortedKeys(src) {
		sv := src[k]
		dv, ok := dst[k]
		if !ok {
			dst[k] = DeepClone(sv)
			continue
		}
		da, dok := AsSlice(dv)
		sa, sok := AsSlice(sv)
		if dok && sok {
			merged := make([]any, 0, len(da)+len(sa))
			merged = append(merged, da...)
			merged = append(merged, DeepClone(sa).([]any)...)
			dst[k] = merged
			continue
		}
		dm, dok := AsMap(dv)
		sm, sok := AsMap(sv)
		if dok && sok {
			MergeInto(dm, sm)
			continue
		}
		// scalar or mismatched shapes: the already-present value wins
	}
}

// Decode decodes b into an untyped tree, preserving numeric intent via
// json.Number and rejecting trailing data.
func Decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, errors.New("invalid JSON: trailing data")
	case err != io.EOF:
		return nil, err
	}
	return v, nil
}
