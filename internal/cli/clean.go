package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/internal/checksum"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/files/scanner"
	"github.com/pmitros/edxml-tools/internal/metrics"
	"github.com/pmitros/edxml-tools/internal/services"
	"github.com/pmitros/edxml-tools/internal/tui"
	"github.com/pmitros/edxml-tools/internal/ui"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <course_path>",
	Short: "Normalize identifiers and layout of a course export",
	Long: `Clean loads course.xml and every fragment it references into one tree,
derives readable identifiers from display names, and writes the course back.

The clean command:
1. Resolves <category>/<url_name>.xml references into a single tree
2. Renames machine-generated url_name values after their display_name
3. Renames hash-named HTML assets after their node
4. Names discussion nodes after the component they follow
5. Re-splits selected categories (problem by default) into fragment files
6. Writes static/urlname_mapping.json (new -> old) when anything was renamed

Nothing is written until every change is planned. Merged fragment files are
deleted last, after an approval prompt unless --force is given.

Arguments:
  course_path    Exported course directory containing course.xml

Configuration precedence: flags > EDXML_* environment > edxml.yaml > defaults

Examples:
  # Preview the changes
  edxml clean ./course --dry-run -v

  # Clean without prompting (CI)
  edxml clean ./course --force

  # Extract problems and html components, write a run report
  edxml clean ./course --extract problem,html --report static/edxml_report.json`,
	Args:              RequireCoursePath,
	ValidArgsFunction: completeDirectories,
	RunE:              runClean,
}

type cleanFlagValues struct {
	root, assets, mapping string
	extract               []string
	extractXPath          string
	discussion            []string
	videoInfo             string
	report, metricsFile   string
	dryRun, force         bool
	timeout               time.Duration
}

var cleanFlags cleanFlagValues

// newApprover selects the approval prompt. Tests replace it.
var newApprover = func(force, verbose bool) edxml.Approver {
	if force {
		return ui.NewForcedApprover(verbose)
	}
	return ui.NewInteractiveApprover(verbose)
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanFlags.root, "root", "",
		"Root document relative to the course directory (default course.xml, or $EDXML_ROOT)")
	cleanCmd.Flags().StringVar(&cleanFlags.assets, "assets", "",
		"HTML asset directory relative to the course directory (default html, or $EDXML_ASSETS)")
	cleanCmd.Flags().StringVar(&cleanFlags.mapping, "mapping", "",
		"Preferred identifier mapping path (default static/urlname_mapping.json, or $EDXML_MAPPING)\n"+
			"When taken, <stem>_0.json, <stem>_1.json, ... are used")
	cleanCmd.Flags().StringSliceVar(&cleanFlags.extract, "extract", nil,
		"Categories re-split into fragment files (default problem, or $EDXML_EXTRACT)")
	cleanCmd.Flags().StringVar(&cleanFlags.extractXPath, "extract-xpath", "",
		"XPath selecting the nodes to re-split; overrides --extract\n"+
			"Example: --extract-xpath '//problem[@url_name] | //html[@url_name]'")
	cleanCmd.Flags().StringSliceVar(&cleanFlags.discussion, "discussion", nil,
		"Categories named after their preceding sibling (default discussion, or $EDXML_DISCUSSION)")
	cleanCmd.Flags().StringVar(&cleanFlags.videoInfo, "video-info", "",
		"Directory of cached <youtube id>.json video metadata used to fill placeholder titles")
	cleanCmd.Flags().StringVar(&cleanFlags.report, "report", "",
		"Write a JSON run report to this path, relative to the course directory")
	cleanCmd.Flags().StringVar(&cleanFlags.metricsFile, "metrics-file", "",
		"Write Prometheus metrics of the run to this textfile")
	cleanCmd.Flags().BoolVar(&cleanFlags.dryRun, "dry-run", false,
		"Plan every change and report it without writing anything")
	cleanCmd.Flags().BoolVar(&cleanFlags.force, "force", false,
		"Skip the interactive approval prompt before merged fragments are deleted")
	cleanCmd.Flags().DurationVar(&cleanFlags.timeout, "timeout", 0,
		"Abort the run after this long, including the approval prompt (default 10m)\n"+
			"Examples: 30s, 5m, 1h30m")
}

// buildCleanConfig builds a CleanConfig from CLI flags, environment and
// edxml.yaml.
func buildCleanConfig(sourcePath string, verbose bool) (edxml.CleanConfig, error) {
	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return edxml.CleanConfig{}, err
	}

	flagged := edxml.CleanConfig{
		SourcePath:           sourcePath,
		RootDocument:         cleanFlags.root,
		AssetDirectory:       cleanFlags.assets,
		MappingPath:          cleanFlags.mapping,
		ExtractCategories:    cleanFlags.extract,
		ExtractXPath:         cleanFlags.extractXPath,
		DiscussionCategories: cleanFlags.discussion,
		VideoInfoDir:         cleanFlags.videoInfo,
		ReportPath:           cleanFlags.report,
		MetricsFile:          cleanFlags.metricsFile,
		DryRun:               cleanFlags.dryRun,
		Force:                cleanFlags.force,
		Verbose:              verbose,
		Timeout:              cleanFlags.timeout,
	}
	return resolveCleanConfig(flagged, projectCfg)
}

func runClean(cmd *cobra.Command, args []string) error {
	sourcePath := coursePath(args[0])
	verbose := getVerboseFlag(cmd)

	config, err := buildCleanConfig(sourcePath, verbose)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder
	if config.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
	}

	fs := filesystem.NewOSFileSystem()
	cleaner := services.NewCleanService(
		fs,
		scanner.NewScannerWithFS(checksum.New(), fs),
		newApprover(config.Force, verbose),
		newLogger(verbose),
		recorder,
	)

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	result, err := cleaner.Clean(ctx, config)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	printCleanSummary(cmd.OutOrStdout(), result)
	return nil
}

func printCleanSummary(w io.Writer, r edxml.RunResult) {
	status := tui.SuccessStyle.Render(tui.SymbolCheck + " Committed")
	if !r.Committed {
		status = tui.WarningStyle.Render(tui.SymbolWarning + " Dry run, nothing written")
	}

	fmt.Fprintln(w, tui.TitleStyle.Render("edxml clean"))
	fmt.Fprintln(w, tui.KeyValue("Run", r.RunID))
	fmt.Fprintln(w, tui.KeyValue("Nodes", r.NodeCount))
	fmt.Fprintln(w, tui.KeyValue("Fragments merged", r.FragmentsConsumed))
	fmt.Fprintln(w, tui.KeyValue("Fragments extracted", r.Extracted))
	fmt.Fprintln(w, tui.KeyValue("Identifiers renamed", r.IdentifiersRenamed))
	fmt.Fprintln(w, tui.KeyValue("Assets renamed", r.AssetsRenamed))
	fmt.Fprintln(w, tui.KeyValue("Discussions named", r.TargetsInferred))
	fmt.Fprintln(w, tui.KeyValue("Video titles filled", r.TitlesFilled))
	if r.MappingPath != "" {
		fmt.Fprintln(w, tui.KeyValue("Mapping", r.MappingPath))
	}
	for _, orphan := range r.Orphans {
		fmt.Fprintln(w, tui.KeyValue("Orphaned fragment", orphan))
	}
	for _, id := range r.DuplicateIDs {
		fmt.Fprintln(w, tui.KeyValue("Duplicate url_name", id))
	}
	fmt.Fprintln(w, tui.KeyValue("Duration", r.Duration.Round(time.Millisecond)))
	fmt.Fprintln(w, status)
}
