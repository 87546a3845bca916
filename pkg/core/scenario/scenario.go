// Package scenario loads valuation scenario files: global parameters
// plus a pointer to the period CSV, in YAML or HJSON (HJSON allows
// commented scenario files).
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"credit_valuation/pkg/models"
)

// Scenario describes one valuation run.
type Scenario struct {
	Name       string     `yaml:"name" json:"name"`
	PeriodsCSV string     `yaml:"periods_csv" json:"periods_csv"`
	Parameters Parameters `yaml:"parameters" json:"parameters"`
}

// Parameters mirrors models.GlobalParameters with file tags.
type Parameters struct {
	FlatInterchangeRate float64 `yaml:"flat_interchange_rate" json:"flat_interchange_rate"`
	DiscountRate        float64 `yaml:"discount_rate" json:"discount_rate"`
	NumAccounts         int     `yaml:"num_accounts" json:"num_accounts"`
}

// GlobalParameters validates and returns the scenario's parameters as a
// model value.
func (s *Scenario) GlobalParameters() (models.GlobalParameters, error) {
	return models.NewGlobalParameters(models.GlobalParameters{
		FlatInterchangeRate: s.Parameters.FlatInterchangeRate,
		DiscountRate:        s.Parameters.DiscountRate,
		NumAccounts:         s.Parameters.NumAccounts,
	})
}

// ResolvePeriodsCSV returns the periods_csv path, resolved relative to
// the scenario file when it is not absolute.
func (s *Scenario) ResolvePeriodsCSV(scenarioPath string) string {
	if s.PeriodsCSV == "" || filepath.IsAbs(s.PeriodsCSV) {
		return s.PeriodsCSV
	}
	return filepath.Join(filepath.Dir(scenarioPath), s.PeriodsCSV)
}

// Load reads a scenario file, choosing the parser by extension:
// .yaml/.yml or .hjson/.json.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}

	var s Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
		}
	case ".hjson", ".json":
		if err := hjson.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q: use .yaml, .yml, .hjson or .json", ext)
	}

	if s.Name == "" {
		base := filepath.Base(path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if s.PeriodsCSV == "" {
		return nil, fmt.Errorf("scenario %s: periods_csv is required", path)
	}
	return &s, nil
}
