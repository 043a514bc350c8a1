// Command spendscope analyzes procurement spreadsheets: it detects the
// header row, maps columns, normalizes amounts and dates, and folds the
// result into supplier / category / time rollups with ABC, maverick and
// tail-spend classification. It runs either as a one-shot CLI over
// files or as an HTTP service.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
