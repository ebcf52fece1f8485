// Package stablejson serializes JSON trees deterministically: object
// keys are emitted in sorted order at every level.
//
// Two encodings are provided. MarshalIndent produces the 4-space
// indented form the generated compatibility files use. Compact
// produces the single-line form used as a canonical descriptor string
// when comparing support data across tree nodes.
package stablejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
)

const indent = "    "

// MarshalIndent returns the 4-space indented, recursively key-sorted
// JSON encoding of v with a trailing newline.
func MarshalIndent(v any) ([]byte, error) {
	val, err := normalize(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := write(&buf, val, 0, true); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Compact returns the compact, recursively key-sorted JSON encoding
// of v.
func Compact(v any) ([]byte, error) {
	val, err := normalize(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := write(&buf, val, 0, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String is Compact as a string, for use as a map/set key.
func String(v any) (string, error) {
	b, err := Compact(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// normalize round-trips v through encoding/json so arbitrary Go values
// and raw bytes end up as the same untyped tree, with numeric intent
// preserved via json.Number.
func normalize(v any) (any, error) {
	var b []byte
	switch x := v.(type) {
	case json.RawMessage:
		b = x
	case []byte:
		b = x
	default:
		var err error
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var val any
	if err := dec.Decode(&val); err != nil {
		return nil, err
	}
	var extra any
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, errors.New("invalid JSON: trailing data")
	case err != io.EOF:
		return nil, err
	}
	return val, nil
}

func write(buf *bytes.Buffer, v any, depth int, pretty bool) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if x {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(x.String())
	case string:
		return writeString(buf, x)
	case []any:
		return writeArray(buf, x, depth, pretty)
	case map[string]any:
		return writeObject(buf, x, depth, pretty)
	default:
		return errors.New("stablejson: unsupported value type")
	}
	return nil
}

func writeArray(buf *bytes.Buffer, arr []any, depth int, pretty bool) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if pretty {
			newlineIndent(buf, depth+1)
		}
		if err := write(buf, item, depth+1, pretty); err != nil {
			return err
		}
	}
	if pretty {
		newlineIndent(buf, depth)
	}
	buf.WriteByte(']')
	return nil
}

func writeObject(buf *bytes.Buffer, m map[string]any, depth int, pretty bool) error {
	if len(m) == 0 {
		buf.WriteString("{}")
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if pretty {
			newlineIndent(buf, depth+1)
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if pretty {
			buf.WriteByte(' ')
		}
		if err := write(buf, m[k], depth+1, pretty); err != nil {
			return err
		}
	}
	if pretty {
		newlineIndent(buf, depth)
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func newlineIndent(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
}
