package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"neoport/internal/core/model"
)

// CsvReporter 每个开放端口一行，表头为小写字段名
type CsvReporter struct{}

func (r *CsvReporter) Render(w io.Writer, results []model.ScanResult) error {
	table := model.ScanResults(results)

	headers := table.Headers()
	for i, h := range headers {
		headers[i] = strings.ToLower(h)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	rows := table.Rows()
	for _, row := range rows {
		for i, cell := range row {
			row[i] = escapeFormula(cell)
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// escapeFormula Banner 来自远端，以公式字符开头的单元格加 ' 前缀，避免表格软件当作公式执行
func escapeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}
