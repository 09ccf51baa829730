package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"neoport/internal/core/model"
)

// JSONReporter 输出结果数组，缺失的 service/banner 为 null
type JSONReporter struct {
	Indent string
}

func (r *JSONReporter) Render(w io.Writer, results []model.ScanResult) error {
	if results == nil {
		results = []model.ScanResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", r.Indent)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
