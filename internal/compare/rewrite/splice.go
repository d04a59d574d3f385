package rewrite

import (
	"sort"

	"github.com/beevik/etree"

	"github.com/vortex/supercompare/internal/compare/model"
	"github.com/vortex/supercompare/internal/ooxml"
)

// leaf is one run-sized (or smaller, post-split) piece of a run sequence,
// tagged with its absolute character range so opcode boundaries can select
// exactly the leaves an opcode covers.
type leaf struct {
	run        *ooxml.Run
	start, end int
}

// cutPoints collects every distinct opcode boundary on one side (original
// when orig is true, modified otherwise) — the offsets runs must be split
// at so every opcode's range lines up with whole leaves.
func cutPoints(ops []TaggedOpcode, orig bool) []int {
	set := make(map[int]struct{})
	for _, op := range ops {
		if orig {
			set[op.OStart] = struct{}{}
			set[op.OEnd] = struct{}{}
		} else {
			set[op.MStart] = struct{}{}
			set[op.MEnd] = struct{}{}
		}
	}
	cuts := make([]int, 0, len(set))
	for c := range set {
		cuts = append(cuts, c)
	}
	sort.Ints(cuts)
	return cuts
}

// splitSafe reports whether every run an interior cut point lands in can
// be split without losing content. Runs with no interior cut are moved or
// cloned whole, so whatever they carry survives; only a run that must be
// divided is at risk.
func splitSafe(runs []*model.RunInfo, cuts []int) bool {
	for _, ri := range runs {
		start := ri.StartPos
		end := start + len(ri.Text)
		for _, c := range cuts {
			if c > start && c < end && !ri.Run().SplittableLossless() {
				return false
			}
		}
	}
	return true
}

// flattenAndSplit splits each run at every cut point that falls strictly
// inside it, leaving runs with no interior cut untouched (so a run
// entirely within one opcode is reused as-is, not uselessly copied). The
// concatenation of the returned leaves' text equals the concatenation of
// the input runs' text, per the run-splitting invariant.
func flattenAndSplit(runs []*model.RunInfo, cuts []int) []leaf {
	var out []leaf
	for _, ri := range runs {
		start := ri.StartPos
		end := start + len(ri.Text)

		var local []int
		for _, c := range cuts {
			if c > start && c < end {
				local = append(local, c-start)
			}
		}
		if len(local) == 0 {
			out = append(out, leaf{run: ri.Run(), start: start, end: end})
			continue
		}

		remaining := ri.Run()
		prevOffset := 0
		curStart := start
		for _, off := range local {
			left, right := remaining.SplitAt(off - prevOffset)
			out = append(out, leaf{run: left, start: curStart, end: curStart + (off - prevOffset)})
			curStart += off - prevOffset
			remaining = right
			prevOffset = off
		}
		out = append(out, leaf{run: remaining, start: curStart, end: end})
	}
	return out
}

// leavesInRange returns the leaves fully contained in [start,end) — exact
// given cutPoints already split every run at that range's boundaries.
func leavesInRange(leaves []leaf, start, end int) []leaf {
	var out []leaf
	for _, l := range leaves {
		if l.start >= start && l.end <= end {
			out = append(out, l)
		}
	}
	return out
}

// replaceRunChildren removes a paragraph's direct run-bearing children
// (plain runs or previously-wrapped ins/del/moveFrom/moveTo, in case of
// re-rewriting) and inserts newChildren in their place, preserving
// whatever precedes or follows them (pPr, bookmarks, and similar).
func replaceRunChildren(el *etree.Element, newChildren []*etree.Element) {
	spliceChildren(el, isRunBearing, newChildren)
}

func isRunBearing(c *etree.Element) bool {
	if c.Space != "w" {
		return false
	}
	switch c.Tag {
	case "r", "ins", "del", "moveFrom", "moveTo":
		return true
	default:
		return false
	}
}

// spliceChildren removes every direct child of el matching isTarget and
// inserts replacement in their place, at the position of the last match
// (before whatever child followed it). If isTarget matches nothing,
// replacement is appended.
func spliceChildren(el *etree.Element, isTarget func(*etree.Element) bool, replacement []*etree.Element) {
	children := el.ChildElements()

	firstTarget, lastTarget := -1, -1
	var toRemove []*etree.Element
	for i, c := range children {
		if isTarget(c) {
			if firstTarget == -1 {
				firstTarget = i
			}
			lastTarget = i
			toRemove = append(toRemove, c)
		}
	}

	if firstTarget == -1 {
		for _, nc := range replacement {
			el.AddChild(nc)
		}
		return
	}

	var anchor *etree.Element
	if lastTarget+1 < len(children) {
		anchor = children[lastTarget+1]
	}
	for _, c := range toRemove {
		el.RemoveChild(c)
	}
	if anchor != nil {
		for _, nc := range replacement {
			el.InsertChild(anchor, nc)
		}
	} else {
		for _, nc := range replacement {
			el.AddChild(nc)
		}
	}
}
