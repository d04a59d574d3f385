package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compare-cli",
	Short: "Compare two OOXML documents and emit a tracked-changes .docx",
	Long: `compare-cli runs the same compare engine the HTTP API exposes,
reading two .docx files from disk and writing a third .docx with every
difference recorded as native insertion, deletion, and move revisions.

Examples:
  # Compare two files, writing redline.docx next to them
  compare-cli diff original.docx modified.docx -o redline.docx

  # Lower the move-detection bar for short moved passages
  compare-cli diff original.docx modified.docx --min-move-span 6`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
