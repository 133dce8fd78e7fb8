// CLAUDE:SUMMARY Manifest YAML schema for alias and pattern dictionaries, validated against an embedded JSON schema.
package dict

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/hazyhaar/tagnorm/pkg/tags"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const (
	MethodAliases  = "aliases"
	MethodPatterns = "patterns"
)

// Manifest describes a dictionary: its source, layout, and how to interpret it.
type Manifest struct {
	ID        string             `yaml:"id" json:"id"`
	Version   string             `yaml:"version,omitempty" json:"version"`
	Source    string             `yaml:"source,omitempty" json:"source"`
	SourceURL string             `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	License   string             `yaml:"license,omitempty" json:"license"`
	DataFile  string             `yaml:"data_file,omitempty" json:"data_file"`
	Method    string             `yaml:"method,omitempty" json:"method"`
	Format    FormatSpec         `yaml:"format,omitempty" json:"-"`
	Patterns  []tags.PatternSpec `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// FormatSpec describes the CSV layout. With a header, columns are looked up
// by name; without one, column 0 is the canonical and every further column
// holds aliases.
type FormatSpec struct {
	Delimiter       string `yaml:"delimiter,omitempty"`
	Encoding        string `yaml:"encoding,omitempty"`
	HasHeader       bool   `yaml:"has_header,omitempty"`
	CanonicalColumn string `yaml:"canonical_column,omitempty"`
	AliasesColumn   string `yaml:"aliases_column,omitempty"`
	AliasSeparator  string `yaml:"alias_separator,omitempty"`
}

//go:embed manifest.schema.json
var manifestSchemaJSON []byte

const manifestSchemaURL = "mem://schemas/manifest.schema.json"

var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(manifestSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decode manifest schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(manifestSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("register manifest schema: %w", err)
	}
	return c.Compile(manifestSchemaURL)
})

// LoadManifest reads, validates and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest validates raw YAML against the manifest schema and decodes
// it, filling defaults. name is only used in error messages.
func ParseManifest(data []byte, name string) (*Manifest, error) {
	if err := validateManifest(data); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", name, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}
	if m.Method == "" {
		m.Method = MethodAliases
	}
	if m.DataFile == "" && m.Method == MethodAliases {
		m.DataFile = "data.csv"
	}
	if m.Format.AliasSeparator == "" {
		m.Format.AliasSeparator = "|"
	}
	return &m, nil
}

// validateManifest round-trips the YAML document through JSON so the
// schema validator sees plain JSON values.
func validateManifest(data []byte) error {
	schema, err := manifestSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("empty manifest")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid: %w", err)
	}
	return nil
}
