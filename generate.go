package compatdata

import (
	"context"
	"sort"

	set "github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"github.com/viant/afs"

	"github.com/thunderbird/webext-compat-data/compattree"
	"github.com/thunderbird/webext-compat-data/diag"
	"github.com/thunderbird/webext-compat-data/jsontree"
	"github.com/thunderbird/webext-compat-data/notation"
	"github.com/thunderbird/webext-compat-data/overrides"
	"github.com/thunderbird/webext-compat-data/refwalk"
	"github.com/thunderbird/webext-compat-data/schemaload"
	"github.com/thunderbird/webext-compat-data/stablejson"
)

// Summary reports what a generation run did, for operator visibility.
type Summary struct {
	Namespaces       int
	Unsupported      int
	Reimplemented    int
	Supported        int
	EntriesUpdated   int
	OverridesApplied int
	CoverageProblems int
	FilesWritten     int
}

// Generator owns one generation run. The compat tree it builds is
// never accessed concurrently.
type Generator struct {
	cfg  *Config
	fs   afs.Service
	diag *diag.Reporter
}

func New(cfg *Config, fs afs.Service, reporter *diag.Reporter) *Generator {
	return &Generator{cfg: cfg, fs: fs, diag: reporter}
}

// Generate runs the full pipeline: load, resolve, classify, update,
// reduce, override, check, write. Only I/O failures return an error;
// schema-level problems are diagnostics.
func (g *Generator) Generate(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	tree, err := g.loadBaseline(ctx)
	if err != nil {
		return nil, err
	}

	upstream, target, err := g.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}

	universe := make([]schemaload.Definition, 0, len(upstream)+len(target))
	universe = append(universe, upstream...)
	universe = append(universe, target...)
	schemaload.NewImportResolver(g.diag, g.cfg.SkipImports).Resolve(universe)

	resolver := refwalk.New(universe, g.diag)
	targetPaths := g.collectTargetPaths(resolver, target)

	updater := compattree.NewUpdater(g.cfg.Vendor, notation.New(g.cfg.NotationLists(), g.diag), g.diag)
	g.applyUpstream(updater, resolver, tree, upstream, targetPaths, summary)
	g.applyTargetOnly(updater, resolver, tree, upstream, target, summary)

	compattree.Reduce(tree, g.cfg.Vendor)

	diff, err := g.applyOverrides(ctx, tree)
	if err != nil {
		return nil, err
	}
	summary.OverridesApplied = countLeaves(diff)

	if err := CheckVendorCoverage(tree, g.cfg.Vendor); err != nil {
		var coverage *CoverageError
		if errors.As(err, &coverage) {
			summary.CoverageProblems = len(coverage.Problems)
			for _, p := range coverage.Problems {
				g.diag.Errorf("%s", p)
			}
		}
	}

	written, err := g.write(ctx, tree)
	if err != nil {
		return nil, err
	}
	summary.FilesWritten = written
	return summary, nil
}

// loadBaseline seeds the working tree from the upstream dataset's
// webextensions.api subtree. An unset baseline URL starts empty.
func (g *Generator) loadBaseline(ctx context.Context) (compattree.Tree, error) {
	if g.cfg.BaselineURL == "" {
		return compattree.Tree{}, nil
	}
	data, err := g.fs.DownloadWithURL(ctx, g.cfg.BaselineURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read baseline %v", g.cfg.BaselineURL)
	}
	value, err := jsontree.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed baseline %v", g.cfg.BaselineURL)
	}
	root, ok := jsontree.AsMap(value)
	if !ok {
		return nil, errors.Errorf("baseline %v is not a JSON object", g.cfg.BaselineURL)
	}
	webext, ok := jsontree.AsMap(root["webextensions"])
	if !ok {
		return nil, errors.Errorf("baseline %v has no webextensions key", g.cfg.BaselineURL)
	}
	api, ok := jsontree.AsMap(webext["api"])
	if !ok {
		return nil, errors.Errorf("baseline %v has no webextensions.api key", g.cfg.BaselineURL)
	}
	return compattree.Tree(jsontree.DeepClone(api).(map[string]any)), nil
}

func (g *Generator) loadSchemas(ctx context.Context) (upstream, target []schemaload.Definition, err error) {
	loader := schemaload.New(g.fs, g.diag)
	for _, tier := range g.cfg.Tiers {
		defs, err := loader.Load(ctx, tier.SchemaDirs, tier.Skip)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to load tier %q", tier.Name)
		}
		if tier.Target {
			target = append(target, defs...)
		} else {
			upstream = append(upstream, defs...)
		}
	}
	return upstream, target, nil
}

// collectTargetPaths resolves references in the target's own schemas
// and returns the set of every entry path they declare.
func (g *Generator) collectTargetPaths(resolver *refwalk.Resolver, target []schemaload.Definition) *set.Set[string] {
	paths := set.New[string](1024)
	for _, def := range target {
		if def.Name() == schemaload.ManifestNamespace {
			continue
		}
		for path := range resolver.Collect(def) {
			paths.Insert(path)
		}
	}
	return paths
}

func (g *Generator) applyUpstream(updater *compattree.Updater, resolver *refwalk.Resolver, tree compattree.Tree, upstream []schemaload.Definition, targetPaths *set.Set[string], summary *Summary) {
	for _, def := range upstream {
		name := def.Name()
		if name == schemaload.ManifestNamespace {
			continue
		}
		summary.Namespaces++
		switch g.cfg.Classification.Kind(name) {
		case Unsupported:
			summary.Unsupported++
			updater.Update(tree, name, false, false)
			summary.EntriesUpdated++
		case Supported:
			summary.Supported++
			for _, path := range sortedPaths(resolver.Collect(def)) {
				updater.Update(tree, path, g.cfg.SupportedValue(), false)
				summary.EntriesUpdated++
			}
		case Reimplemented:
			summary.Reimplemented++
			for _, path := range sortedPaths(resolver.Collect(def)) {
				var desired any = false
				if targetPaths.Contains(path) {
					desired = g.cfg.SupportedValue()
				}
				updater.Update(tree, path, desired, false)
				summary.EntriesUpdated++
			}
		}
	}
}

// applyTargetOnly asserts support for namespaces the target declares
// that have no upstream counterpart.
func (g *Generator) applyTargetOnly(updater *compattree.Updater, resolver *refwalk.Resolver, tree compattree.Tree, upstream, target []schemaload.Definition, summary *Summary) {
	upstreamNames := set.New[string](len(upstream))
	for _, def := range upstream {
		upstreamNames.Insert(def.Name())
	}
	for _, def := range target {
		name := def.Name()
		if name == schemaload.ManifestNamespace || upstreamNames.Contains(name) {
			continue
		}
		summary.Namespaces++
		if g.cfg.Classification.Kind(name) == Unsupported {
			summary.Unsupported++
			updater.Update(tree, name, false, false)
			summary.EntriesUpdated++
			continue
		}
		summary.Supported++
		for _, path := range sortedPaths(resolver.Collect(def)) {
			updater.Update(tree, path, g.cfg.SupportedValue(), false)
			summary.EntriesUpdated++
		}
	}
}

func (g *Generator) applyOverrides(ctx context.Context, tree compattree.Tree) (map[string]any, error) {
	override, err := overrides.Load(ctx, g.fs, g.cfg.OverrideURLs)
	if err != nil {
		return nil, err
	}
	diff := overrides.Apply(tree, override)
	if len(diff) > 0 {
		if s, err := stablejson.String(diff); err == nil {
			g.diag.Infof("overrides applied: %s", s)
		}
	}
	return diff, nil
}

func sortedPaths(entries refwalk.Entries) []string {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func countLeaves(diff map[string]any) int {
	count := 0
	for _, v := range diff {
		if m, ok := jsontree.AsMap(v); ok {
			if _, isLeaf := m["version_added"]; isLeaf {
				count++
				continue
			}
			count += countLeaves(m)
		}
	}
	return count
}
