package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

const (
	hashChapter    = "0123456789abcdef0123456789abcdef"
	hashSequential = "fedcba9876543210fedcba9876543210"
)

// courseFiles is a small export: a hash-named chapter and sequential, a
// problem, a video and one unreferenced problem.
func courseFiles() map[string]string {
	return map[string]string{
		"course.xml": `<course url_name="2013_Spring" org="MITx" course="6002x" display_name="Circuits">
  <chapter url_name="` + hashChapter + `"/>
</course>
`,
		"chapter/" + hashChapter + ".xml":       `<chapter display_name="Week 1"><sequential url_name="` + hashSequential + `"/></chapter>`,
		"sequential/" + hashSequential + ".xml": `<sequential display_name="Basics"><problem url_name="p1"/><video url_name="v1" display_name="Video" youtube_id_1_0="abc_123"/></sequential>`,
		"problem/p1.xml":                        `<problem display_name="Ohm"><p>V = IR</p></problem>`,
		"problem/unused.xml":                    `<problem display_name="Spare"/>`,
	}
}

// writeCourse lays the course out under a temporary directory and returns
// it with forward slashes.
func writeCourse(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range courseFiles() {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.ToSlash(dir)
}

func memoryCourse() *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem("/course")
	for rel, content := range courseFiles() {
		mfs.AddFile(rel, content)
	}
	return mfs
}

type stubApprover struct {
	approved bool
	calls    int
}

func (a *stubApprover) RequestApproval(context.Context, edxml.CommitPlan) (bool, error) {
	a.calls++
	return a.approved, nil
}

// useApprover replaces the approval prompt for one test.
func useApprover(t *testing.T, a edxml.Approver) {
	t.Helper()
	original := newApprover
	newApprover = func(bool, bool) edxml.Approver { return a }
	t.Cleanup(func() { newApprover = original })
}
