// Package compatdata generates the WebExtension API compatibility
// data for a target application by merging three sources: an upstream
// baseline compatibility dataset, locally parsed API schema
// definitions, and a manual override file.
//
// "Support" here is a static assertion derived from classification
// tables and schema presence, not a measured property: the generator
// never executes or introspects real API behaviour, and it understands
// only the WebExtension schema dialect (namespace, functions, events,
// properties, types, $import, $ref), not JSON Schema in general.
//
// # Pipeline
//
// A run is a single deterministic pass:
//
//	load schemas -> resolve $import -> resolve $ref + collect entries
//	  -> classify namespaces -> update compat tree -> reduce
//	  -> apply overrides -> check vendor coverage -> serialize
//
// Schema-level problems (malformed manifest fragments, unresolvable
// references, notation ambiguities, missing vendor entries) are
// diagnostics: reported, never fatal. Only I/O failures abort a run.
//
// # Concurrency
//
// Generation is single-threaded over in-memory trees; only the final
// per-namespace file writes fan out concurrently, as independent
// serializations of disjoint subtrees.
//
// # Subpackages
//
//   - jsontree: shared untyped JSON tree model (clone, merge, kinds)
//   - stablejson: deterministic sorted-key serialization
//   - diag: deduplicated non-fatal diagnostics stream
//   - schemaload: schema file loading and $import resolution
//   - refwalk: $ref resolution and dotted entry path collection
//   - notation: parameter naming convention detection
//   - compattree: compat tree updates and minimization
//   - overrides: manual override loading and application
package compatdata
