package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ArtifactDiff describes how one artifact on disk differs from a fresh render.
type ArtifactDiff struct {
	Name    string
	Missing bool
	Added   int
	Removed int
	// Lines holds the changed lines prefixed with "+" or "-".
	Lines []string
}

// Changed reports whether the artifact differs.
func (d ArtifactDiff) Changed() bool {
	return d.Missing || d.Added > 0 || d.Removed > 0
}

// Compare diffs fresh artifacts against existing ones line by line.
// Only artifacts present in fresh are compared.
func Compare(existing, fresh Artifacts) []ArtifactDiff {
	dmp := diffmatchpatch.New()
	out := make([]ArtifactDiff, 0, len(fresh))
	for _, name := range fresh.Names() {
		d := ArtifactDiff{Name: name}
		old, ok := existing[name]
		if !ok || old == nil {
			d.Missing = true
			out = append(out, d)
			continue
		}

		a, b, lines := dmp.DiffLinesToChars(string(old), string(fresh[name]))
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
		for _, df := range diffs {
			var prefix string
			switch df.Type {
			case diffmatchpatch.DiffInsert:
				prefix = "+"
			case diffmatchpatch.DiffDelete:
				prefix = "-"
			default:
				continue
			}
			for _, l := range strings.SplitAfter(df.Text, "\n") {
				if l == "" {
					continue
				}
				d.Lines = append(d.Lines, prefix+strings.TrimSuffix(l, "\n"))
				if prefix == "+" {
					d.Added++
				} else {
					d.Removed++
				}
			}
		}
		out = append(out, d)
	}
	return out
}
