package market_hours

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk layout of a region override file:
//
//	regions:
//	  - id: dubai
//	    weekends: [5, 6]
//	    holidays: ["01.01", "easter+1"]
type rulesFile struct {
	Regions []RulesConfig `yaml:"regions"`
}

// LoadRulesFile reads region overrides from a YAML file.
func LoadRulesFile(path string) ([]RulesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}
	overrides, err := ParseRules(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return overrides, nil
}

// ParseRules decodes region overrides. Unknown fields and unknown region ids are rejected.
func ParseRules(r io.Reader) ([]RulesConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file rulesFile
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse regions file: %w", err)
	}

	seen := make(map[RegionID]bool, len(file.Regions))
	for i, cfg := range file.Regions {
		id, err := ParseRegionID(string(cfg.ID))
		if err != nil {
			return nil, &ConfigError{Region: string(cfg.ID), Field: "id", Value: string(cfg.ID), Err: err}
		}
		if seen[id] {
			return nil, &ConfigError{Region: string(id), Field: "id", Value: string(cfg.ID), Err: fmt.Errorf("listed more than once")}
		}
		seen[id] = true
		file.Regions[i].ID = id
	}
	return file.Regions, nil
}
