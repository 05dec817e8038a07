package app

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff renders the change from before to after as a unified diff. It is
// empty when nothing changed.
func Diff(before, after string) string {
	if before == after {
		return ""
	}
	if before != "" && before[len(before)-1] != '\n' {
		before += "\n"
	}
	if after != "" && after[len(after)-1] != '\n' {
		after += "\n"
	}
	edits := myers.ComputeEdits(span.URIFromPath("note"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", before, edits))
}
