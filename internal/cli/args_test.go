package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

func TestRequireCoursePath(t *testing.T) {
	cmd := &cobra.Command{
		Use: "clean <course_path>",
	}

	t.Run("returns error when no args", func(t *testing.T) {
		err := RequireCoursePath(cmd, []string{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing required argument: <course_path>") {
			t.Errorf("expected error to contain 'missing required argument: <course_path>', got: %s", err.Error())
		}
		if !strings.Contains(err.Error(), "Example:") {
			t.Errorf("expected error to contain 'Example:', got: %s", err.Error())
		}
		if code := edxml.ExitCodeForError(err); code != edxml.ExitUsageError {
			t.Errorf("expected exit code %d, got %d", edxml.ExitUsageError, code)
		}
	})

	t.Run("returns nil when arg provided", func(t *testing.T) {
		if err := RequireCoursePath(cmd, []string{"./course"}); err != nil {
			t.Errorf("expected nil, got: %v", err)
		}
	})

	t.Run("returns error when too many args", func(t *testing.T) {
		err := RequireCoursePath(cmd, []string{"a", "b"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "accepts 1 arg") {
			t.Errorf("expected error to contain 'accepts 1 arg', got: %s", err.Error())
		}
	})
}

func TestRequireCoursePathAndFiles(t *testing.T) {
	cmd := &cobra.Command{
		Use: "tidy-json <course_path> [files...]",
	}

	if err := RequireCoursePathAndFiles(cmd, nil); err == nil {
		t.Fatal("expected error for missing course path")
	}
	if err := RequireCoursePathAndFiles(cmd, []string{"./course"}); err != nil {
		t.Errorf("expected nil for course path only, got: %v", err)
	}
	if err := RequireCoursePathAndFiles(cmd, []string{"./course", "a.json", "b.json"}); err != nil {
		t.Errorf("expected nil for course path and files, got: %v", err)
	}
}
