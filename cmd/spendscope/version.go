package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set via ldflags:
//
//	go build -ldflags "-X main.Version=1.2.0 -X main.BuildDate=2026-01-15"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("spendscope %s\n", Version)
		cmd.Printf("  build date: %s\n", BuildDate)
		cmd.Printf("  go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
