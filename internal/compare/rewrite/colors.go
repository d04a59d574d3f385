package rewrite

import "github.com/vortex/supercompare/internal/ooxml"

// Brand colors applied to revision-wrapped runs when Options.ForceBrandColors
// is set: blue-800 for insertions, red-700 for deletions, emerald-800 for
// moves (so a moved passage reads as distinct from an ordinary edit).
const (
	colorInsertHex = "1e3a8a"
	colorDeleteHex = "b91c1c"
	colorMoveHex   = "065f46"
)

func colorFor(kind OpKind) string {
	switch kind {
	case KindInsert:
		return colorInsertHex
	case KindDelete:
		return colorDeleteHex
	case KindMoveInsert, KindMoveDelete:
		return colorMoveHex
	default:
		return ""
	}
}

// applyBrandColor sets run's rPr color (replacing any existing value) and,
// when strike is true, its strike-through flag. Other run properties are
// left untouched.
func applyBrandColor(run *ooxml.Run, hexColor string, strike bool) {
	rpr := run.EnsureRPr()

	color := rpr.FindElement("w:color")
	if color == nil {
		color = rpr.CreateElement("w:color")
	}
	color.CreateAttr("w:val", hexColor)

	if !strike {
		return
	}
	st := rpr.FindElement("w:strike")
	if st == nil {
		st = rpr.CreateElement("w:strike")
	}
	st.CreateAttr("w:val", "1")
}
