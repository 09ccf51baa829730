package options

import (
	"fmt"
	"strings"

	"neoport/internal/config"
)

// OutputOptions 定义结果输出的通用参数
type OutputOptions struct {
	Format string // -o, --output
	File   string // --output-file，为空时写到 stdout
}

func NewOutputOptions(cfg *config.OutputConfig) *OutputOptions {
	if cfg == nil {
		return &OutputOptions{Format: "text"}
	}
	return &OutputOptions{Format: cfg.Format, File: cfg.File}
}

func (o *OutputOptions) Validate() error {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	for _, f := range config.OutputFormats {
		if f == o.Format {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %q (expected one of %s)", o.Format, strings.Join(config.OutputFormats, "/"))
}
