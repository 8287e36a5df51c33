// Package linediff compares two texts line by line and produces change
// counts plus a bounded textual summary.
//
// The comparison is positional: line i of the old text is compared with
// line i of the new text, with no realignment on insertions. That trades
// precision for O(n) cost; the summary is advisory and never used for
// merging, so a single inserted line making later lines read as "changed"
// is an accepted gap.
package linediff

import "strings"

// DefaultSummaryLines caps the number of summary lines emitted per diff.
const DefaultSummaryLines = 50

// Result holds the outcome of a line comparison. LinesAdded and
// LinesRemoved count only the lines scanned before the summary cap was
// reached, so the counts and the summary always describe the same prefix
// of the change.
type Result struct {
	LinesAdded   int
	LinesRemoved int
	Summary      string
}

// Compare diffs oldText against newText, emitting at most maxSummaryLines
// summary lines ("+ <line>" for additions, "- <line>" for removals). A
// line present in both but different counts as one removal plus one
// addition. maxSummaryLines <= 0 selects DefaultSummaryLines.
func Compare(oldText, newText string, maxSummaryLines int) Result {
	if maxSummaryLines <= 0 {
		maxSummaryLines = DefaultSummaryLines
	}

	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	longest := len(oldLines)
	if len(newLines) > longest {
		longest = len(newLines)
	}

	var r Result
	var summary []string

	for i := 0; i < longest; i++ {
		switch {
		case i >= len(oldLines):
			// Old exhausted: pure addition.
			if len(summary)+1 > maxSummaryLines {
				r.Summary = strings.Join(summary, "\n")
				return r
			}
			r.LinesAdded++
			summary = append(summary, "+ "+newLines[i])

		case i >= len(newLines):
			// New exhausted: pure removal.
			if len(summary)+1 > maxSummaryLines {
				r.Summary = strings.Join(summary, "\n")
				return r
			}
			r.LinesRemoved++
			summary = append(summary, "- "+oldLines[i])

		case oldLines[i] == newLines[i]:
			// Unchanged.

		default:
			// Changed in place: a removal and an addition, two summary
			// lines. Stop before the pair if it would overflow the cap so
			// counts never describe lines the summary dropped.
			if len(summary)+2 > maxSummaryLines {
				r.Summary = strings.Join(summary, "\n")
				return r
			}
			r.LinesRemoved++
			r.LinesAdded++
			summary = append(summary, "- "+oldLines[i], "+ "+newLines[i])
		}
	}

	r.Summary = strings.Join(summary, "\n")
	return r
}

// splitLines splits text on newlines. Empty text has zero lines, not one
// empty line, so creating a one-line file reads as one addition.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
