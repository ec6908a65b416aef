package reliability

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/dealgraph/dealgraph/pkg/errors"
)

// fileFormat is the YAML document shape for a reliability table.
type fileFormat struct {
	Default float64            `yaml:"default"`
	Sources map[string]float64 `yaml:"sources"`
}

// LoadFile reads a reliability table from a YAML file. Entries in the file
// override the built-in defaults; sources not listed keep their standard
// weights.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, errors.NewConfigError("reliability", "parsing table file", err)
	}

	opts := []Option{WithWeights(ff.Sources)}
	if ff.Default > 0 {
		opts = append(opts, WithDefaultWeight(ff.Default))
	}
	return New(opts...), nil
}

// SaveFile writes the table to a YAML file, suitable for editing and
// reloading via LoadFile.
func (t *Table) SaveFile(path string) error {
	ff := fileFormat{
		Default: t.defaultWeight,
		Sources: make(map[string]float64, len(t.weights)),
	}
	for source, weight := range t.weights {
		ff.Sources[source] = weight
	}

	data, err := yaml.Marshal(ff)
	if err != nil {
		return errors.NewConfigError("reliability", "encoding table file", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
