// Package engine implements the compare entry point: it wires the
// structural reader, aligner, move detector, and rewriter together into the
// single compare_ooxml operation the rest of the service calls. Every other
// package in internal/compare is a pure, independently testable stage;
// this is the only place that knows the order they run in.
package engine

import (
	"time"

	"go.uber.org/multierr"

	"github.com/vortex/supercompare/internal/compare/cmperr"
	"github.com/vortex/supercompare/internal/compare/model"
	"github.com/vortex/supercompare/internal/compare/move"
	"github.com/vortex/supercompare/internal/compare/rewrite"
)

// DefaultAuthor is the revision author stamped on every tracked change when
// Options.Author is left blank. It is the rewriter's own fallback, so a
// caller reaching rewrite.Paragraph directly with an empty Author gets
// the same brand string.
const DefaultAuthor = rewrite.DefaultAuthor

// Options configures one comparison run. The zero value is valid: every
// zero field falls back to its default. DefaultOptions spells those
// defaults out; override only the fields that matter.
type Options struct {
	// Author and Timestamp are forwarded to every emitted revision. A zero
	// Timestamp means "now" at rewrite time.
	Author    string
	Timestamp time.Time

	// ForceBrandColors paints inserted/deleted/moved text with the brand
	// palette (internal/compare/rewrite/colors.go) in addition to the
	// semantic ins/del/moveFrom/moveTo markup.
	ForceBrandColors bool

	// ShingleSize, JaccardThreshold, and MinMoveSpanTokens tune the move
	// detector. Zero values fall back to move.DefaultOptions().
	ShingleSize       int
	JaccardThreshold  float64
	MinMoveSpanTokens int

	// DiffHeadersFooters opts into comparing header/footer stories in
	// addition to the main body.
	DiffHeadersFooters bool
}

// DefaultOptions returns the engine's standard defaults.
func DefaultOptions() Options {
	mv := move.DefaultOptions()
	return Options{
		Author:            DefaultAuthor,
		ShingleSize:       mv.ShingleSize,
		JaccardThreshold:  mv.JaccardThreshold,
		MinMoveSpanTokens: mv.MinSpanTokens,
	}
}

func (o Options) moveOptions() move.Options {
	mv := move.DefaultOptions()
	if o.ShingleSize > 0 {
		mv.ShingleSize = o.ShingleSize
	}
	if o.JaccardThreshold > 0 {
		mv.JaccardThreshold = o.JaccardThreshold
	}
	if o.MinMoveSpanTokens > 0 {
		mv.MinSpanTokens = o.MinMoveSpanTokens
	}
	return mv
}

func (o Options) rewriteOptions() rewrite.Options {
	author := o.Author
	if author == "" {
		author = DefaultAuthor
	}
	return rewrite.Options{Author: author, Timestamp: o.Timestamp, ForceBrandColors: o.ForceBrandColors}
}

func (o Options) validate() error {
	if o.JaccardThreshold != 0 && (o.JaccardThreshold < 0 || o.JaccardThreshold > 1) {
		return cmperr.Configuration("jaccard threshold %v out of range [0,1]", o.JaccardThreshold)
	}
	if o.ShingleSize < 0 {
		return cmperr.Configuration("shingle size %d must be non-negative", o.ShingleSize)
	}
	if o.MinMoveSpanTokens < 0 {
		return cmperr.Configuration("minimum move span tokens %d must be non-negative", o.MinMoveSpanTokens)
	}
	return nil
}

// Stats summarizes the operations a comparison produced. Total is always
// Insertions + Deletions + Moves (a move counts once, not as a del+ins
// pair).
type Stats struct {
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
	Moves      int `json:"moves"`
	Total      int `json:"total"`
}

// Meta carries the diagnostic detail Stats doesn't: which paragraph
// indices paired up, how many rewrite operations ran, and any graceful
// degradations the engine had to fall back on.
type Meta struct {
	Pairs          [][2]int `json:"pairs"`
	OperationCount int      `json:"operationCount"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Result is the outcome of a comparison: the rewritten original package
// (now carrying tracked-change markup) plus its stats and meta.
type Result struct {
	DocumentBytes []byte
	Stats         Stats
	Meta          Meta
}

// Compare reads originalBytes and modifiedBytes as OOXML packages, aligns
// their paragraphs, detects cross-document moves, rewrites the original
// package's parsed tree in place with native tracked-change markup, and
// serializes it. The modified package is only ever read from — its runs
// are cloned into the original tree when materializing insertions.
func Compare(originalBytes, modifiedBytes []byte, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	origPkg, err := model.Read(originalBytes)
	if err != nil {
		return nil, err
	}
	modPkg, err := model.Read(modifiedBytes)
	if err != nil {
		return nil, err
	}

	var warnErr error
	stats := Stats{}
	var pairsOut [][2]int
	opCount := 0

	bodyWarn := compareStory(
		flattenParagraphs(model.EnumerateBlocks(origPkg)),
		flattenParagraphs(model.EnumerateBlocks(modPkg)),
		origPkg.Body, opts, &stats, &pairsOut, &opCount,
	)
	warnErr = multierr.Append(warnErr, bodyWarn)

	if opts.DiffHeadersFooters {
		origStories := model.EnumerateHeaderFooterBlocks(origPkg)
		modStories := model.EnumerateHeaderFooterBlocks(modPkg)
		n := len(origStories)
		if len(modStories) < n {
			n = len(modStories)
		}
		for i := 0; i < n; i++ {
			w := compareStory(
				flattenParagraphs([]*model.Block{origStories[i]}),
				flattenParagraphs([]*model.Block{modStories[i]}),
				origStories[i].Element, opts, &stats, &pairsOut, &opCount,
			)
			warnErr = multierr.Append(warnErr, w)
		}
	}

	stats.Total = stats.Insertions + stats.Deletions + stats.Moves

	docBytes, err := origPkg.OpcPackage().SaveBytes()
	if err != nil {
		return nil, cmperr.Serialization("saving rewritten package: %v", err)
	}

	meta := Meta{Pairs: pairsOut, OperationCount: opCount}
	for _, w := range multierr.Errors(warnErr) {
		meta.Warnings = append(meta.Warnings, w.Error())
	}

	return &Result{DocumentBytes: docBytes, Stats: stats, Meta: meta}, nil
}
