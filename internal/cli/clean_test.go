package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// resetCleanFlags resets the clean flags, which are package-level globals
// that persist across tests.
func resetCleanFlags() {
	cleanFlags = cleanFlagValues{}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return out.String(), err
}

func exists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(filepath.FromSlash(dir), filepath.FromSlash(rel)))
	return err == nil
}

func TestCleanCmd_ArgsValidation(t *testing.T) {
	err := cleanCmd.Args(cleanCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	if code := edxml.ExitCodeForError(err); code != edxml.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", edxml.ExitUsageError, code, err)
	}
}

func TestCleanCmd_DryRun(t *testing.T) {
	clearEnv(t)
	resetCleanFlags()
	defer resetCleanFlags()
	approver := &stubApprover{approved: true}
	useApprover(t, approver)

	dir := writeCourse(t)
	before, err := os.ReadFile(filepath.Join(dir, "course.xml"))
	if err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "clean", dir, "--dry-run")
	if err != nil {
		t.Fatalf("clean --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "Dry run") {
		t.Errorf("expected dry run status in output:\n%s", out)
	}
	if approver.calls != 0 {
		t.Errorf("dry run must not ask for approval, got %d call(s)", approver.calls)
	}

	after, _ := os.ReadFile(filepath.Join(dir, "course.xml"))
	if !bytes.Equal(before, after) {
		t.Error("dry run rewrote course.xml")
	}
	if !exists(dir, "chapter/"+hashChapter+".xml") {
		t.Error("dry run removed a fragment")
	}
	if exists(dir, edxml.DefaultMappingPath) {
		t.Error("dry run wrote the identifier mapping")
	}
}

func TestCleanCmd_Commit(t *testing.T) {
	clearEnv(t)
	resetCleanFlags()
	defer resetCleanFlags()
	approver := &stubApprover{approved: true}
	useApprover(t, approver)

	dir := writeCourse(t)
	out, err := executeCommand(t, "clean", dir)
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if approver.calls != 1 {
		t.Errorf("expected one approval request, got %d", approver.calls)
	}
	if !strings.Contains(out, "Committed") {
		t.Errorf("expected committed status in output:\n%s", out)
	}

	for _, rel := range []string{"chapter/" + hashChapter + ".xml", "sequential/" + hashSequential + ".xml"} {
		if exists(dir, rel) {
			t.Errorf("merged fragment %s should be deleted", rel)
		}
	}
	if !exists(dir, "problem/p1.xml") {
		t.Error("extracted problem should be written back")
	}
	if !exists(dir, "problem/unused.xml") {
		t.Error("orphaned fragment must be left alone")
	}
	if !exists(dir, edxml.DefaultMappingPath) {
		t.Error("identifier mapping should be written")
	}

	data, err := os.ReadFile(filepath.Join(dir, "course.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `url_name="Week_1"`) {
		t.Errorf("chapter should be renamed after its display name:\n%s", data)
	}
}

func TestCleanCmd_ApprovalDenied(t *testing.T) {
	clearEnv(t)
	resetCleanFlags()
	defer resetCleanFlags()
	useApprover(t, &stubApprover{approved: false})

	dir := writeCourse(t)
	_, err := executeCommand(t, "clean", dir)
	if !errors.Is(err, edxml.ErrApprovalDenied) {
		t.Fatalf("expected ErrApprovalDenied, got %v", err)
	}
	if code := edxml.ExitCodeForError(err); code != edxml.ExitApprovalDenied {
		t.Errorf("expected exit code %d, got %d", edxml.ExitApprovalDenied, code)
	}
	if !exists(dir, "chapter/"+hashChapter+".xml") {
		t.Error("denied run must not touch the course")
	}
}

func TestCleanCmd_MissingRoot(t *testing.T) {
	clearEnv(t)
	resetCleanFlags()
	defer resetCleanFlags()
	useApprover(t, &stubApprover{approved: true})

	_, err := executeCommand(t, "clean", filepath.ToSlash(t.TempDir()))
	if code := edxml.ExitCodeForError(err); code != edxml.ExitRootMissing {
		t.Errorf("expected exit code %d, got %d for: %v", edxml.ExitRootMissing, code, err)
	}
}

func TestBuildCleanConfig_Flags(t *testing.T) {
	clearEnv(t)
	resetCleanFlags()
	defer resetCleanFlags()

	cleanFlags.root = "main.xml"
	cleanFlags.extract = []string{"html"}
	cleanFlags.dryRun = true
	cleanFlags.timeout = 2 * time.Minute

	cfg, err := buildCleanConfig(filepath.ToSlash(t.TempDir()), true)
	if err != nil {
		t.Fatalf("buildCleanConfig() error = %v", err)
	}
	if cfg.RootDocument != "main.xml" || !cfg.DryRun || !cfg.Verbose || cfg.Timeout != 2*time.Minute {
		t.Errorf("flags not carried into config: %+v", cfg)
	}
	if len(cfg.ExtractCategories) != 1 || cfg.ExtractCategories[0] != "html" {
		t.Errorf("ExtractCategories = %v", cfg.ExtractCategories)
	}
}

func TestPrintCleanSummary(t *testing.T) {
	var buf bytes.Buffer
	printCleanSummary(&buf, edxml.RunResult{
		RunID:              "run-1",
		NodeCount:          6,
		IdentifiersRenamed: 2,
		MappingPath:        edxml.DefaultMappingPath,
		Orphans:            []string{"problem/unused.xml"},
		DuplicateIDs:       []string{"intro"},
		Committed:          true,
	})
	out := buf.String()
	for _, want := range []string{"run-1", "Identifiers renamed", edxml.DefaultMappingPath, "problem/unused.xml", "intro", "Committed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
