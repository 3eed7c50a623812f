package compliance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// standardsFile is the YAML shape of an external standards table.
type standardsFile struct {
	Standards []Standard `yaml:"standards"`
}

// Load reads a standards table from a YAML file so new jurisdictions can be
// rolled out without a rebuild. The loaded table replaces the default one
// wholesale; rows are validated by NewEvaluator.
func Load(path string) ([]Standard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read standards file: %w", err)
	}

	var file standardsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse standards file: %w", err)
	}
	if len(file.Standards) == 0 {
		return nil, fmt.Errorf("standards file %s defines no standards", path)
	}

	return file.Standards, nil
}

// LoadOrDefault loads the table at path when one is configured and falls back
// to the built-in table otherwise.
func LoadOrDefault(path string) ([]Standard, error) {
	if path == "" {
		return DefaultStandards(), nil
	}
	return Load(path)
}
