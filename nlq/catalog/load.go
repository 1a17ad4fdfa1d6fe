package catalog

import (
	_ "embed"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/nlq/types"
)

// SupportedSchemaRange is the semver constraint a catalog document's
// schema_version must satisfy. Major bumps are breaking by definition and
// refuse to load.
const SupportedSchemaRange = "^1.0"

//go:embed catalog.yaml
var defaultCatalog []byte

// document mirrors the YAML layout of a catalog source.
type document struct {
	SchemaVersion string                   `yaml:"schema_version"`
	Tables        map[string]tableDoc      `yaml:"tables"`
	Relationships []types.Relationship     `yaml:"relationships"`
	Concepts      []types.ConceptMapping   `yaml:"concepts"`
	Intents       map[string]intentDoc     `yaml:"intents"`
}

type tableDoc struct {
	Locator string   `yaml:"locator"`
	Columns []string `yaml:"columns"`
}

type intentDoc struct {
	Template   types.IntentTemplate `yaml:"template"`
	Validation types.ValidationRule `yaml:"validation"`
}

// LoadDefault parses and validates the embedded catalog.
func LoadDefault() (*Snapshot, error) {
	return Parse(defaultCatalog)
}

// LoadFile parses and validates a catalog document from disk.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	logger.Logger.Infow("catalog loaded",
		logger.FieldCatalogPath, path,
		logger.FieldSchemaVersion, snap.Version,
	)
	return snap, nil
}

// Parse unmarshals a catalog document, checks its schema version, builds
// the snapshot, and runs the consistency validation. Any violation is a
// MalformedSchema error: fatal at startup, never per-request recoverable.
func Parse(data []byte) (*Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedSchema, err.Error())
	}

	if err := checkSchemaVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Version:       doc.SchemaVersion,
		Tables:        make(map[string]*types.TableDefinition, len(doc.Tables)),
		Concepts:      make(map[string]*types.ConceptMapping, len(doc.Concepts)),
		Templates:     make(map[types.Intent]*types.IntentTemplate, len(doc.Intents)),
		Rules:         make(map[types.Intent]*types.ValidationRule, len(doc.Intents)),
		Relationships: doc.Relationships,
	}

	for name, td := range doc.Tables {
		snap.Tables[name] = &types.TableDefinition{
			Name:    name,
			Locator: td.Locator,
			Columns: td.Columns,
		}
	}

	for i := range doc.Concepts {
		c := doc.Concepts[i]
		if _, dup := snap.Concepts[c.Name]; dup {
			return nil, errors.Wrapf(errors.ErrMalformedSchema, "duplicate concept %q", c.Name)
		}
		snap.Concepts[c.Name] = &c
		snap.conceptNames = append(snap.conceptNames, c.Name)
	}
	sort.Strings(snap.conceptNames)

	for name, id := range doc.Intents {
		intent := types.Intent(name)
		tmpl := id.Template
		tmpl.Intent = intent
		rule := id.Validation
		rule.Intent = intent
		snap.Templates[intent] = &tmpl
		snap.Rules[intent] = &rule
	}

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func checkSchemaVersion(version string) error {
	if version == "" {
		return errors.Wrap(errors.ErrMalformedSchema, "missing schema_version")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(errors.ErrMalformedSchema, "bad schema_version %q", version)
	}
	constraint, err := semver.NewConstraint(SupportedSchemaRange)
	if err != nil {
		return errors.Wrap(err, "parse supported schema range")
	}
	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrMalformedSchema,
				"schema_version %s outside supported range %s", version, SupportedSchemaRange),
			"upgrade opsq to a release supporting catalog schema %s", version)
	}
	return nil
}
