package scanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmitros/edxml-tools/internal/checksum"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

func newTestScanner() (*Scanner, *filesystem.MemoryFileSystem) {
	fs := filesystem.NewMemoryFileSystem("/course")
	return NewScannerWithFS(checksum.New(), fs), fs
}

func TestNewScanner_NilCalculator(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for nil calculator")
		}
	}()
	NewScanner(nil)
}

func TestNewScannerWithFS_NilArgs(t *testing.T) {
	calc := checksum.New()
	fs := filesystem.NewMemoryFileSystem("/")

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil calculator", func() { NewScannerWithFS(nil, fs) }},
		{"nil filesystem", func() { NewScannerWithFS(calc, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("Expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestScanCourse(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("course.xml", `<course url_name="c"/>`)
	fs.AddFile("chapter/ch1.xml", `<chapter display_name="Week 1"/>`)
	fs.AddFile("problem/p1.xml", `<problem><p>Q</p></problem>`)
	fs.AddFile("problem/p2.xml", "<problem>\n  <p>Q</p>\n</problem>\n")
	fs.AddFile("html/h1.xml", `<html filename="h1"/>`)
	fs.AddFile("html/h1.html", `<p>hello</p>`)
	fs.AddFile("static/urlname_mapping.json", `{}`)
	fs.AddFile("static/diagram.xml", `<svg/>`)
	fs.AddFile("policies/course/policy.json", `{}`)
	fs.AddFile("drafts/problem/d1.xml", `<problem/>`)
	fs.AddFile(".git/config.xml", `<x/>`)
	fs.AddFile("problem/notes.txt", `ignored`)

	inv, err := s.ScanCourse("/course")
	require.NoError(t, err)

	var paths []string
	for _, f := range inv.Fragments {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"chapter/ch1.xml", "html/h1.xml", "problem/p1.xml", "problem/p2.xml"}, paths)
	assert.Equal(t, []string{"html/h1.html"}, inv.Assets)
	assert.Equal(t, map[string]int{"chapter": 1, "html": 1, "problem": 2}, inv.Categories())

	p1 := inv.Fragments[2]
	assert.Equal(t, "problem", p1.Category)
	assert.Equal(t, "p1", p1.URLName)
	assert.Equal(t, int64(len(`<problem><p>Q</p></problem>`)), p1.SizeBytes)
	assert.Len(t, p1.Checksum, 64)
	assert.Len(t, p1.ChecksumRaw, 64)

	p2 := inv.Fragments[3]
	assert.Equal(t, p1.Checksum, p2.Checksum, "formatting should not change the normalized checksum")
	assert.NotEqual(t, p1.ChecksumRaw, p2.ChecksumRaw)
	assert.Equal(t, [][]string{{"problem/p1.xml", "problem/p2.xml"}}, inv.IdenticalContent())
}

func TestScanCourse_Orphans(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("course.xml", `<course/>`)
	fs.AddFile("problem/used.xml", `<problem/>`)
	fs.AddFile("problem/stale.xml", `<problem/>`)

	inv, err := s.ScanCourse("/course")
	require.NoError(t, err)

	consumed := map[string]bool{"problem/used.xml": true}
	assert.Equal(t, []string{"problem/stale.xml"}, inv.Orphans(func(p string) bool { return consumed[p] }))
}

func TestScanCourse_MissingDirectory(t *testing.T) {
	s, _ := newTestScanner()

	_, err := s.ScanCourse("/nowhere")
	assert.Error(t, err)
}

func TestValidateRoot(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("course.xml", `<course/>`)
	fs.AddFile("folder.xml/inner.xml", `<x/>`)

	assert.NoError(t, s.ValidateRoot("/course", "course.xml"))

	err := s.ValidateRoot("/course", "missing.xml")
	assert.True(t, errors.Is(err, edxml.ErrRootNotFound))

	err = s.ValidateRoot("/course", "folder.xml")
	assert.True(t, errors.Is(err, edxml.ErrRootNotFound))
}
