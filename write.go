package compatdata

import (
	"bytes"
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/thunderbird/webext-compat-data/compattree"
	"github.com/thunderbird/webext-compat-data/jsontree"
	"github.com/thunderbird/webext-compat-data/stablejson"
)

// write serializes the aggregate file and one file per namespace. The
// per-namespace uploads fan out; any failure aborts the run.
func (g *Generator) write(ctx context.Context, tree compattree.Tree) (int, error) {
	aggregate, err := stablejson.MarshalIndent(map[string]any(tree))
	if err != nil {
		return 0, errors.Wrap(err, "failed to serialize aggregate")
	}
	aggregateURL := url.Join(g.cfg.OutputURL, g.cfg.AggregateName())
	if err := g.fs.Upload(ctx, aggregateURL, file.DefaultFileOsMode, bytes.NewReader(aggregate)); err != nil {
		return 0, errors.Wrapf(err, "failed to write %v", aggregateURL)
	}
	written := 1

	namespaces := jsontree.SortedKeys(tree)
	errs := make([]error, len(namespaces))
	wg := sync.WaitGroup{}
	for i, name := range namespaces {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			errs[i] = g.writeNamespace(ctx, name, tree[name])
		}(i, name)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (g *Generator) writeNamespace(ctx context.Context, name string, node any) error {
	data, err := stablejson.MarshalIndent(map[string]any{name: node})
	if err != nil {
		return errors.Wrapf(err, "failed to serialize namespace %v", name)
	}
	destURL := url.Join(g.cfg.OutputURL, name+".json")
	if err := g.fs.Upload(ctx, destURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to write %v", destURL)
	}
	return nil
}
