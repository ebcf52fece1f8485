package notation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thunderbird/webext-compat-data/diag"
)

func newDetector(lists Lists) (*Detector, *diag.Reporter) {
	var buf bytes.Buffer
	rep := diag.New(diag.NewLogger(&buf, false))
	return New(lists, rep), rep
}

func TestDetect_DefaultNested(t *testing.T) {
	d, rep := newDetector(Lists{})
	entry := map[string]any{}
	parent := map[string]any{"onUpdated": entry}
	res := d.Detect("changeInfo", entry, parent, "onUpdated", "tabs.events.onUpdated.parameters.changeInfo", false)
	assert.Equal(t, Nested, res.Kind)
	assert.Equal(t, "changeInfo", res.Key)
	assert.Equal(t, entry, res.Scope)
	assert.Equal(t, 0, rep.Len())
}

func TestDetect_ParameterSuffix(t *testing.T) {
	d, _ := newDetector(Lists{})
	entry := map[string]any{}
	parent := map[string]any{
		"onUpdated":                      entry,
		"onUpdated_changeInfo_parameter": map[string]any{},
	}
	res := d.Detect("changeInfo", entry, parent, "onUpdated", "tabs.events.onUpdated.parameters.changeInfo", false)
	assert.Equal(t, ParameterSuffix, res.Kind)
	assert.Equal(t, "onUpdated_changeInfo_parameter", res.Key)
	assert.Equal(t, map[string]any{}, res.Scope["onUpdated"])
}

func TestDetect_ValueSuffix(t *testing.T) {
	d, _ := newDetector(Lists{})
	entry := map[string]any{}
	parent := map[string]any{
		"setBadgeText":  entry,
		"details_value": map[string]any{},
	}
	res := d.Detect("details", entry, parent, "setBadgeText", "browserAction.functions.setBadgeText.parameters.details", false)
	assert.Equal(t, ValueSuffix, res.Kind)
	assert.Equal(t, "details_value", res.Key)
}

func TestDetect_MixedParameterAndValuePrefersValue(t *testing.T) {
	d, rep := newDetector(Lists{})
	entry := map[string]any{}
	parent := map[string]any{
		"set":                   entry,
		"set_details_parameter": map[string]any{},
		"other_value":           map[string]any{},
	}
	res := d.Detect("details", entry, parent, "set", "cookies.functions.set.parameters.details", false)
	assert.Equal(t, ValueSuffix, res.Kind)
	assert.True(t, rep.Has("mixed notations at cookies.functions.set.parameters.details: _parameter and _value"))
}

func TestDetect_FlatUnconfirmedLoggedNotActedOn(t *testing.T) {
	d, rep := newDetector(Lists{})
	entry := map[string]any{}
	parent := map[string]any{"query": entry, "queryInfo": map[string]any{}}
	res := d.Detect("queryInfo", entry, parent, "query", "tabs.functions.query.parameters.queryInfo", false)
	assert.Equal(t, Nested, res.Kind, "unconfirmed flat must not be acted on")
	assert.True(t, rep.Has("unconfirmed flat notation usage at tabs.functions.query.parameters.queryInfo"))
}

func TestDetect_FlatConfirmedByPrefixAllowList(t *testing.T) {
	d, rep := newDetector(Lists{ConfirmedFlat: []string{"tabs.functions.query"}})
	entry := map[string]any{}
	parent := map[string]any{"query": entry, "queryInfo": map[string]any{}}
	res := d.Detect("queryInfo", entry, parent, "query", "tabs.functions.query.parameters.queryInfo", false)
	assert.Equal(t, Flat, res.Kind)
	assert.Equal(t, "queryInfo", res.Key)
	assert.Equal(t, 0, rep.Len())
}

func TestDetect_FlatPrefixMustMatchSegmentBoundary(t *testing.T) {
	d, rep := newDetector(Lists{ConfirmedFlat: []string{"tabs.functions.quer"}})
	entry := map[string]any{}
	parent := map[string]any{"query": entry, "queryInfo": map[string]any{}}
	res := d.Detect("queryInfo", entry, parent, "query", "tabs.functions.query.parameters.queryInfo", false)
	assert.Equal(t, Nested, res.Kind)
	assert.Equal(t, 1, rep.Len())
}

func TestDetect_FlatFalsePositiveSuppressed(t *testing.T) {
	d, rep := newDetector(Lists{FalsePositives: []string{"tabs.functions.query.parameters.queryInfo"}})
	entry := map[string]any{}
	parent := map[string]any{"query": entry, "queryInfo": map[string]any{}}
	res := d.Detect("queryInfo", entry, parent, "query", "tabs.functions.query.parameters.queryInfo", false)
	assert.Equal(t, Nested, res.Kind)
	assert.Equal(t, 0, rep.Len())
}

func TestDetect_NoFlatCheckActsOnFlat(t *testing.T) {
	d, _ := newDetector(Lists{})
	entry := map[string]any{}
	parent := map[string]any{"query": entry, "queryInfo": map[string]any{}}
	res := d.Detect("queryInfo", entry, parent, "query", "tabs.functions.query.parameters.queryInfo", true)
	assert.Equal(t, Flat, res.Kind)
}

func TestDetect_Deterministic(t *testing.T) {
	d, _ := newDetector(Lists{ConfirmedFlat: []string{"a.functions.b"}})
	entry := map[string]any{}
	parent := map[string]any{"b": entry, "c": map[string]any{}, "c_value": true}
	first := d.Detect("c", entry, parent, "b", "a.functions.b.parameters.c", false)
	second := d.Detect("c", entry, parent, "b", "a.functions.b.parameters.c", false)
	assert.Equal(t, first, second)
}
