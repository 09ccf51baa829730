/**
 * 结果输出接口定义
 * @date: 2026.01.21
 * @description: 将排序后的扫描结果渲染为 text/json/csv/yaml，解耦 Console/File 输出。
 */

package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"neoport/internal/core/model"
)

// TabularData 是一个可以被渲染为表格的数据接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Renderer 将排序后的结果列表写出
type Renderer interface {
	Render(w io.Writer, results []model.ScanResult) error
}

// New 按格式名创建 Renderer
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewConsoleReporter(), nil
	case "json":
		return &JSONReporter{Indent: "  "}, nil
	case "csv":
		return &CsvReporter{}, nil
	case "yaml":
		return &YAMLReporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// SaveResult 渲染结果并写入文件
// CSV 文件头部写入 UTF-8 BOM，防止 Excel 打开乱码
func SaveResult(path string, r Renderer, results []model.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, ok := r.(*CsvReporter); ok {
		if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	if err := r.Render(f, results); err != nil {
		return err
	}
	return f.Close()
}
