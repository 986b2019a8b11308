package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/policy"
	"github.com/pmitros/edxml-tools/internal/tui"
)

var tidyJSONCmd = &cobra.Command{
	Use:   "tidy-json <course_path> [files...]",
	Short: "Pretty-print policy JSON files with sorted keys",
	Long: `Tidy-json rewrites JSON files of a course export with two-space indent and
sorted keys so they diff cleanly under version control.

Files are relative to the course directory. Without files, the policies
listed in edxml.yaml are used, or else policy.json and grading_policy.json
in every directory under policies/. Missing files are skipped.

Examples:
  edxml tidy-json ./course
  edxml tidy-json ./course policies/2013_Spring/policy.json --dry-run`,
	Args:              RequireCoursePathAndFiles,
	ValidArgsFunction: completeCourseFiles,
	RunE:              runTidyJSON,
}

var tidyDryRun bool

func init() {
	rootCmd.AddCommand(tidyJSONCmd)

	tidyJSONCmd.Flags().BoolVar(&tidyDryRun, "dry-run", false, "List the files that would change without writing them")
}

func runTidyJSON(cmd *cobra.Command, args []string) error {
	sourcePath := coursePath(args[0])
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return err
	}

	tidier := policy.NewTidier(filesystem.NewOSFileSystem(), newLogger(verbose))
	files := args[1:]
	if len(files) == 0 && projectCfg != nil {
		files = projectCfg.Policies
	}
	if len(files) == 0 {
		if files, err = tidier.DefaultTargets(sourcePath); err != nil {
			return err
		}
	}

	res, err := tidier.Tidy(sourcePath, files, tidyDryRun)
	if err != nil {
		return fmt.Errorf("tidy-json failed: %w", err)
	}
	printTidyResult(cmd.OutOrStdout(), res, tidyDryRun)
	return nil
}

func printTidyResult(w io.Writer, res policy.Result, dryRun bool) {
	verb := "Rewrote"
	if dryRun {
		verb = "Would rewrite"
	}
	for _, f := range res.Rewritten {
		fmt.Fprintf(w, "%s %s %s\n", tui.SuccessStyle.Render(tui.SymbolCheck), verb, f)
	}
	fmt.Fprintln(w, tui.KeyValue("Rewritten", len(res.Rewritten)))
	fmt.Fprintln(w, tui.KeyValue("Already tidy", len(res.Unchanged)))
	fmt.Fprintln(w, tui.KeyValue("Missing", len(res.Missing)))
}
