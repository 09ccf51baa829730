package reporter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"neoport/internal/core/model"
)

type YAMLReporter struct{}

func (r *YAMLReporter) Render(w io.Writer, results []model.ScanResult) error {
	if results == nil {
		results = []model.ScanResult{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
