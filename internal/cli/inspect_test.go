package cli

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/pmitros/edxml-tools/internal/logging"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

func TestInspectCourse(t *testing.T) {
	mfs := memoryCourse()
	mfs.AddFile("problem/copy.xml", `<problem display_name="Spare"/>`)
	mfs.AddFile(edxml.DefaultMappingPath, `{}`)

	report, err := inspectCourse(context.Background(), mfs, edxml.CleanConfig{SourcePath: "/course"}, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("inspectCourse() error = %v", err)
	}

	if got := len(report.Inventory.Fragments); got != 5 {
		t.Errorf("expected 5 fragments, got %d", got)
	}
	if report.Nodes != 6 {
		t.Errorf("expected 6 nodes, got %d", report.Nodes)
	}
	if report.MachineGenerated != 2 {
		t.Errorf("expected 2 machine-generated ids, got %d", report.MachineGenerated)
	}
	if want := []string{"problem/copy.xml", "problem/unused.xml"}; !reflect.DeepEqual(report.Orphans, want) {
		t.Errorf("Orphans = %v, want %v", report.Orphans, want)
	}
	if want := []string{edxml.DefaultMappingPath}; !reflect.DeepEqual(report.Mappings, want) {
		t.Errorf("Mappings = %v, want %v", report.Mappings, want)
	}
	if len(report.DuplicateIDs) != 0 {
		t.Errorf("unexpected duplicates: %v", report.DuplicateIDs)
	}

	var buf bytes.Buffer
	printInspection(&buf, "course", report)
	out := buf.String()
	for _, want := range []string{"Course course", "Orphaned fragments (2)", "problem/copy.xml = problem/unused.xml", edxml.DefaultMappingPath} {
		if !strings.Contains(out, want) {
			t.Errorf("inspection output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCourse_MissingRoot(t *testing.T) {
	mfs := memoryCourse()
	_, err := inspectCourse(context.Background(), mfs, edxml.CleanConfig{SourcePath: "/course", RootDocument: "other.xml"}, logging.NewNullLogger())
	if code := edxml.ExitCodeForError(err); code != edxml.ExitRootMissing {
		t.Errorf("expected exit code %d, got %d for: %v", edxml.ExitRootMissing, code, err)
	}
}
