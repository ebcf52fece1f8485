package compattree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/notation"
)

const vendor = "thunderbird"

func newUpdater(lists notation.Lists) (*Updater, *diag.Reporter) {
	var buf bytes.Buffer
	rep := diag.New(diag.NewLogger(&buf, false))
	return NewUpdater(vendor, notation.New(lists, rep), rep), rep
}

func versionAdded(t *testing.T, tree Tree, keys ...string) any {
	t.Helper()
	node := map[string]any(tree)
	for _, k := range keys {
		next, ok := node[k].(map[string]any)
		require.True(t, ok, "missing node %q", k)
		node = next
	}
	compat := node["__compat"].(map[string]any)
	entry := compat["support"].(map[string]any)[vendor].(map[string]any)
	return entry["version_added"]
}

func TestUpdate_CreatesNestedSupportedNodes(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query.parameters.queryInfo", true, false)

	assert.Equal(t, true, versionAdded(t, tree, "tabs"))
	assert.Equal(t, true, versionAdded(t, tree, "tabs", "query"))
	assert.Equal(t, true, versionAdded(t, tree, "tabs", "query", "queryInfo"))
}

func TestUpdate_TerminalFalsyIsAbsorbing(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query.parameters.queryInfo", true, false)
	u.Update(tree, "tabs.functions.query", false, false)

	query := tree["tabs"].(map[string]any)["query"].(map[string]any)
	assert.Equal(t, false, versionAdded(t, tree, "tabs", "query"))
	_, hasChild := query["queryInfo"]
	assert.False(t, hasChild, "children erased by terminal unsupported")
}

func TestUpdate_SupportedWinsOverPriorFalseExactly(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "compose.functions.sendMessage", false, false)
	u.Update(tree, "compose.functions.sendMessage", "85", false)

	assert.Equal(t, "85", versionAdded(t, tree, "compose", "sendMessage"))
}

func TestUpdate_TruthyNeverDowngraded(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "compose.functions.sendMessage", "85", false)
	u.Update(tree, "compose.functions.sendMessage", true, false)

	assert.Equal(t, "85", versionAdded(t, tree, "compose", "sendMessage"))
}

func TestUpdate_IntermediateFalsyDoesNotDowngradeExisting(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query", true, false)
	u.Update(tree, "tabs.functions.query.parameters.queryInfo", false, false)

	assert.Equal(t, true, versionAdded(t, tree, "tabs", "query"), "existing branch untouched")
	assert.Equal(t, false, versionAdded(t, tree, "tabs", "query", "queryInfo"))
}

func TestUpdate_DeeperSupportedOverridesCreatedUnsupported(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query.parameters.queryInfo", false, false)
	u.Update(tree, "tabs.functions.query.parameters.queryInfo", true, false)

	assert.Equal(t, true, versionAdded(t, tree, "tabs", "query", "queryInfo"))
}

func TestUpdate_CallbackCarriesNoCompatState(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query.parameters.callback", true, false)

	query := tree["tabs"].(map[string]any)["query"].(map[string]any)
	_, hasCallback := query["callback"]
	assert.False(t, hasCallback)
}

func TestUpdate_StopsAtGroupingKeyOutsideCompatSemantics(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query.returns.value", true, false)

	query := tree["tabs"].(map[string]any)["query"].(map[string]any)
	_, hasReturns := query["returns"]
	assert.False(t, hasReturns)
	_, hasValue := query["value"]
	assert.False(t, hasValue)
}

func TestUpdate_NotationValueSuffixTargetsParentScope(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{
		"browserAction": map[string]any{
			"setBadgeText": map[string]any{},
			"other_value":  map[string]any{},
		},
	}
	u.Update(tree, "browserAction.functions.setBadgeText.parameters.details", true, false)

	ns := tree["browserAction"].(map[string]any)
	_, nested := ns["setBadgeText"].(map[string]any)["details"]
	assert.False(t, nested, "value-suffixed parameter must not nest")
	assert.Equal(t, true, versionAdded(t, tree, "browserAction", "details_value"))
}

func TestUpdate_EnumLiteralNestsDirectly(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{}
	u.Update(tree, "tabs.functions.query.parameters.status.enum.loading", true, false)

	assert.Equal(t, true, versionAdded(t, tree, "tabs", "query", "status", "loading"))
}

func TestUpdate_TruthyPreservesOtherVendors(t *testing.T) {
	u, _ := newUpdater(notation.Lists{})
	tree := Tree{
		"tabs": map[string]any{
			"query": map[string]any{
				"__compat": map[string]any{
					"support": map[string]any{
						"firefox": map[string]any{"version_added": "10"},
					},
				},
			},
		},
	}
	u.Update(tree, "tabs.functions.query", true, false)

	support := tree["tabs"].(map[string]any)["query"].(map[string]any)["__compat"].(map[string]any)["support"].(map[string]any)
	assert.Equal(t, "10", support["firefox"].(map[string]any)["version_added"])
	assert.Equal(t, true, support[vendor].(map[string]any)["version_added"])
}
