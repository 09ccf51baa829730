package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neoport/internal/pkg/version"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Long:  "显示 neoport 的版本信息，包括版本号、构建时间、Git 提交和 Go 版本。",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "neoport %s\n", version.GetVersion())
			fmt.Fprintf(out, "API Version: %s\n", version.APIVersion)
			fmt.Fprintf(out, "Build Time: %s\n", version.BuildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", version.GitCommit)
			fmt.Fprintf(out, "Go Version: %s\n", version.GoVersion())
		},
	}
}
