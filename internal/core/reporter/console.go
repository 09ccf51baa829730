package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"neoport/internal/core/model"
)

// ConsoleReporter 控制台表格输出
type ConsoleReporter struct{}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// 多行 Banner 会打乱表格，控制字符转义后输出
var bannerEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)

func (r *ConsoleReporter) Render(w io.Writer, results []model.ScanResult) error {
	if len(results) == 0 {
		if _, err := fmt.Fprintln(w, "No open ports found."); err != nil {
			return err
		}
	} else {
		rows := model.ScanResults(results).Rows()
		for _, row := range rows {
			row[len(row)-1] = bannerEscaper.Replace(row[len(row)-1])
		}
		if err := r.printTableFromData(w, model.ScanResults(results).Headers(), rows); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nFound %d open port(s)\n", len(results))
	return err
}

func (r *ConsoleReporter) printTableFromData(w io.Writer, headers []string, rows [][]string) error {
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)

	out, err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false).
		WithData(tableData).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err = fmt.Fprintln(w, out)
	return err
}
