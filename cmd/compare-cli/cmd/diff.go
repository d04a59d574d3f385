package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vortex/supercompare/internal/compare/engine"
)

var (
	outputFile        string
	author            string
	shingleSize       int
	jaccardThreshold  float64
	minMoveSpanTokens int
	forceBrandColors  bool
	diffHeadersFooter bool
	printStats        bool

	diffCmd = &cobra.Command{
		Use:   "diff <original.docx> <modified.docx>",
		Short: "Compare two .docx files and write a tracked-changes .docx",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiff,
	}
)

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output .docx path (default: <original>.compared.docx)")
	diffCmd.Flags().StringVar(&author, "author", engine.DefaultAuthor, "revision author stamped on every tracked change")
	diffCmd.Flags().IntVar(&shingleSize, "shingle-size", 0, "shingle length for move detection (0: engine default)")
	diffCmd.Flags().Float64Var(&jaccardThreshold, "jaccard-threshold", 0, "minimum Jaccard similarity for a move match (0: engine default)")
	diffCmd.Flags().IntVar(&minMoveSpanTokens, "min-move-span", 0, "minimum token span eligible for move detection (0: engine default)")
	diffCmd.Flags().BoolVar(&forceBrandColors, "brand-colors", false, "paint inserted/deleted/moved runs with the brand palette")
	diffCmd.Flags().BoolVar(&diffHeadersFooter, "diff-headers-footers", false, "also diff header/footer stories, not just the body")
	diffCmd.Flags().BoolVar(&printStats, "stats", false, "print the comparison's stats as JSON to stdout")
}

func runDiff(cmd *cobra.Command, args []string) error {
	originalPath, modifiedPath := args[0], args[1]

	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("reading original: %w", err)
	}
	modified, err := os.ReadFile(modifiedPath)
	if err != nil {
		return fmt.Errorf("reading modified: %w", err)
	}

	opts := engine.DefaultOptions()
	opts.Author = author
	opts.ShingleSize = shingleSize
	opts.JaccardThreshold = jaccardThreshold
	opts.MinMoveSpanTokens = minMoveSpanTokens
	opts.ForceBrandColors = forceBrandColors
	opts.DiffHeadersFooters = diffHeadersFooter

	result, err := engine.Compare(original, modified, opts)
	if err != nil {
		return fmt.Errorf("comparing: %w", err)
	}

	out := outputFile
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(originalPath), filepath.Ext(originalPath))
		out = filepath.Join(filepath.Dir(originalPath), base+".compared.docx")
	}
	if err := os.WriteFile(out, result.DocumentBytes, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("wrote %s (insertions=%d deletions=%d moves=%d)\n",
		out, result.Stats.Insertions, result.Stats.Deletions, result.Stats.Moves)
	for _, w := range result.Meta.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if printStats {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Stats engine.Stats `json:"stats"`
			Meta  engine.Meta  `json:"meta"`
		}{result.Stats, result.Meta})
	}
	return nil
}
