package schemaload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveImports_ReplacesPlaceholderAndStripsIdentity(t *testing.T) {
	defs := []Definition{
		{
			"namespace": "manifest",
			"types": []any{
				map[string]any{
					"id":                   "Base",
					"min_manifest_version": float64(2),
					"properties":           map[string]any{"icon": map[string]any{"type": "string"}},
				},
			},
		},
		{
			"namespace": "theme",
			"types": []any{
				map[string]any{
					"id":         "ThemeType",
					"$import":    "Base",
					"properties": map[string]any{"colors": map[string]any{"type": "object"}},
				},
			},
		},
	}
	rep := newTestReporter()
	NewImportResolver(rep, nil).Resolve(defs)

	theme := defs[1]["types"].([]any)[0].(map[string]any)
	_, hasImport := theme["$import"]
	assert.False(t, hasImport)
	assert.Equal(t, "ThemeType", theme["id"], "importer identity preserved")
	_, hasMin := theme["min_manifest_version"]
	assert.False(t, hasMin, "imported identity metadata stripped")

	props := theme["properties"].(map[string]any)
	assert.Contains(t, props, "colors")
	assert.Contains(t, props, "icon")
	assert.Equal(t, 0, rep.Len())
}

func TestResolveImports_ImporterKeysWinArraysConcatenate(t *testing.T) {
	defs := []Definition{
		{
			"namespace": "alpha",
			"types": []any{
				map[string]any{"id": "Shared", "type": "object", "choices": []any{"b"}},
			},
		},
		{
			"namespace": "beta",
			"functions": []any{
				map[string]any{"name": "run", "$import": "Shared", "type": "function", "choices": []any{"a"}},
			},
		},
	}
	rep := newTestReporter()
	NewImportResolver(rep, nil).Resolve(defs)

	run := defs[1]["functions"].([]any)[0].(map[string]any)
	assert.Equal(t, "function", run["type"], "importer scalar wins")
	assert.Equal(t, []any{"a", "b"}, run["choices"])
}

func TestResolveImports_ManifestBaseImportLeftUntouched(t *testing.T) {
	defs := []Definition{
		{
			"namespace": "browserAction",
			"types": []any{
				map[string]any{"id": "Details", "$import": "manifest.ActionManifest"},
			},
		},
	}
	rep := newTestReporter()
	NewImportResolver(rep, nil).Resolve(defs)

	details := defs[0]["types"].([]any)[0].(map[string]any)
	assert.Equal(t, "manifest.ActionManifest", details["$import"])
	assert.Equal(t, 0, rep.Len())
}

func TestResolveImports_MissingTargetReportedNotFatal(t *testing.T) {
	defs := []Definition{
		{
			"namespace": "gamma",
			"types":     []any{map[string]any{"id": "T", "$import": "Nowhere"}},
		},
	}
	rep := newTestReporter()
	NewImportResolver(rep, nil).Resolve(defs)

	node := defs[0]["types"].([]any)[0].(map[string]any)
	assert.Equal(t, "Nowhere", node["$import"])
	assert.True(t, rep.Has(`unresolvable $import "Nowhere"`))
}

func TestFindDefinition_MatchesNamespaceAndID(t *testing.T) {
	defs := []Definition{
		{"namespace": "one", "types": []any{map[string]any{"id": "Deep", "type": "object"}}},
		{"namespace": "two"},
	}
	byNS := FindDefinition(defs, "two")
	require.NotNil(t, byNS)
	assert.Equal(t, "two", byNS["namespace"])

	byID := FindDefinition(defs, "Deep")
	require.NotNil(t, byID)
	assert.Equal(t, "object", byID["type"])

	assert.Nil(t, FindDefinition(defs, "absent"))
}
