package compatdata

import (
	"context"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/thunderbird/webext-compat-data/notation"
)

// Tier names one schema source (toolkit, browser, mail, ...) and the
// directories its schema files live in.
type Tier struct {
	Name       string   `yaml:"name" json:"name"`
	SchemaDirs []string `yaml:"schemaDirs" json:"schemaDirs"`
	// Skip lists schema file names excluded from this tier.
	Skip []string `yaml:"skip,omitempty" json:"skip,omitempty"`
	// Target marks the tier holding the target application's own
	// schemas, used to verify reimplemented namespaces.
	Target bool `yaml:"target,omitempty" json:"target,omitempty"`
}

// NotationLists configures the flat-notation allow-lists.
type NotationLists struct {
	ConfirmedFlat  []string `yaml:"confirmedFlat,omitempty" json:"confirmedFlat,omitempty"`
	FalsePositives []string `yaml:"falsePositives,omitempty" json:"falsePositives,omitempty"`
}

// Config is the run configuration, loaded from a YAML file. All tables
// in it are immutable once the run starts.
type Config struct {
	// Vendor is the target vendor key written into support entries.
	Vendor string `yaml:"vendor" json:"vendor"`
	// BaselineURL locates the upstream compatibility dataset, keyed
	// webextensions.api.<namespace>...
	BaselineURL string `yaml:"baseline" json:"baseline"`
	// Tiers lists schema sources in trust order; exactly one should be
	// marked as the target.
	Tiers []Tier `yaml:"tiers" json:"tiers"`

	Classification Classification `yaml:"classification" json:"classification"`
	Notation       NotationLists  `yaml:"notation,omitempty" json:"notation,omitempty"`

	// SkipImports lists $import id prefixes left unresolved; defaults
	// to the manifest-base prefix.
	SkipImports []string `yaml:"skipImports,omitempty" json:"skipImports,omitempty"`

	// OverrideURLs list manual override files applied in order.
	OverrideURLs []string `yaml:"overrides,omitempty" json:"overrides,omitempty"`

	// OutputURL is the directory receiving the aggregate and
	// per-namespace output files.
	OutputURL string `yaml:"output" json:"output"`
	// AggregateFile names the aggregate output file.
	AggregateFile string `yaml:"aggregateFile,omitempty" json:"aggregateFile,omitempty"`

	// SupportedVersion, when set, is the version string recorded for
	// supported entries instead of boolean true.
	SupportedVersion string `yaml:"supportedVersion,omitempty" json:"supportedVersion,omitempty"`
}

const defaultAggregateFile = "webextensions.json"

// LoadConfig reads and validates a YAML run configuration.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %v", URL)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "malformed config %v", URL)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	if c.Vendor == "" {
		return errors.New("config: vendor is required")
	}
	if len(c.Tiers) == 0 {
		return errors.New("config: at least one schema tier is required")
	}
	targets := 0
	for _, tier := range c.Tiers {
		if len(tier.SchemaDirs) == 0 {
			return errors.Errorf("config: tier %q has no schema directories", tier.Name)
		}
		if tier.Target {
			targets++
		}
	}
	if targets != 1 {
		return errors.Errorf("config: exactly one target tier is required, got %d", targets)
	}
	if c.OutputURL == "" {
		return errors.New("config: output is required")
	}
	return nil
}

// AggregateName returns the aggregate output file name.
func (c *Config) AggregateName() string {
	if c.AggregateFile != "" {
		return c.AggregateFile
	}
	return defaultAggregateFile
}

// SupportedValue returns the value recorded for supported entries:
// the configured version string, or boolean true.
func (c *Config) SupportedValue() any {
	if c.SupportedVersion != "" {
		return c.SupportedVersion
	}
	return true
}

// NotationLists converts the config lists into the detector's form.
func (c *Config) NotationLists() notation.Lists {
	return notation.Lists{
		ConfirmedFlat:  c.Notation.ConfirmedFlat,
		FalsePositives: c.Notation.FalsePositives,
	}
}
