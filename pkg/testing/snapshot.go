package testing

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sebdah/goldie/v2"

	"github.com/go-drift/flow/pkg/tree"
)

// GoldenDir is the fixture directory used by MatchesGolden, relative to
// the package under test.
const GoldenDir = "testdata"

// Snapshot captures the structure of a tree as text.
type Snapshot struct {
	Text  string
	Nodes int
}

// CaptureSnapshot captures the current structure of t.
func CaptureSnapshot(t *tree.Tree) *Snapshot {
	return &Snapshot{Text: tree.Snapshot(t), Nodes: t.Len()}
}

func (s *Snapshot) String() string { return s.Text }

// MatchesGolden compares this snapshot against testdata/<name>.golden.
// Run the test with -update to rewrite the file.
func (s *Snapshot) MatchesGolden(t *testing.T, name string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(s.Text))
}

// Diff returns a unified diff from other to this snapshot. Returns the
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	if s.Text == other.Text {
		return ""
	}
	return unifiedDiff(other.Text, s.Text)
}

// unifiedDiff renders a unified diff of expected against actual with three
// lines of context.
func unifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
