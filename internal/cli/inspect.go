package cli

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/internal/checksum"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/files/loader"
	"github.com/pmitros/edxml-tools/internal/files/scanner"
	"github.com/pmitros/edxml-tools/internal/mapping"
	"github.com/pmitros/edxml-tools/internal/propagate"
	"github.com/pmitros/edxml-tools/internal/slug"
	"github.com/pmitros/edxml-tools/internal/tui"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <course_path>",
	Short: "Summarize a course export without changing it",
	Long: `Inspect scans the fragment directories of a course export, assembles the
course tree and reports what a clean run would work with: fragments per
category, machine-generated identifiers, orphaned and identical fragments,
duplicate identifiers and existing identifier mappings.

Nothing is written.`,
	Args:              RequireCoursePath,
	ValidArgsFunction: completeDirectories,
	RunE:              runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// Inspection is what inspect reports.
type Inspection struct {
	Inventory        edxml.Inventory
	Nodes            int
	MachineGenerated int
	Orphans          []string
	DuplicateIDs     []string
	Mappings         []string
}

func inspectCourse(ctx context.Context, fsys filesystem.FileSystem, config edxml.CleanConfig, logger edxml.Logger) (Inspection, error) {
	config.ApplyDefaults()
	sc := scanner.NewScannerWithFS(checksum.New(), fsys)
	if err := sc.ValidateRoot(config.SourcePath, config.RootDocument); err != nil {
		return Inspection{}, err
	}
	inv, err := sc.ScanCourse(config.SourcePath)
	if err != nil {
		return Inspection{}, fmt.Errorf("failed to scan course: %w", err)
	}

	res, err := loader.NewLoader(fsys, logger).Load(ctx, config.SourcePath, config.RootDocument)
	if err != nil {
		return Inspection{}, err
	}

	out := Inspection{
		Inventory:    inv,
		Nodes:        res.Tree.Count(),
		Orphans:      inv.Orphans(res.IsConsumed),
		DuplicateIDs: propagate.Duplicates(res.Tree),
		Mappings: mapping.Artifacts(config.MappingPath, func(rel string) bool {
			return filesystem.Exists(fsys, path.Join(config.SourcePath, rel))
		}),
	}
	res.Tree.Walk(res.Tree.Root(), func(id xmltree.NodeID) bool {
		if slug.IsMachineGenerated(res.Tree.AttrValue(id, edxml.AttrURLName)) {
			out.MachineGenerated++
		}
		return true
	})
	return out, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	sourcePath := coursePath(args[0])
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return err
	}
	config, err := resolveCleanConfig(edxml.CleanConfig{SourcePath: sourcePath}, projectCfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	report, err := inspectCourse(ctx, filesystem.NewOSFileSystem(), config, newLogger(verbose))
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}
	printInspection(cmd.OutOrStdout(), path.Base(sourcePath), report)
	return nil
}

func printInspection(w io.Writer, name string, r Inspection) {
	fmt.Fprintln(w, tui.TitleStyle.Render("Course "+name))

	counts := r.Inventory.Categories()
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var total int64
	for _, f := range r.Inventory.Fragments {
		total += f.SizeBytes
	}

	fmt.Fprintln(w, tui.KeyValue("Fragments", fmt.Sprintf("%d (%s)", len(r.Inventory.Fragments), humanize.Bytes(uint64(total)))))
	for _, c := range categories {
		fmt.Fprintln(w, tui.KeyValue("  "+c, counts[c]))
	}
	fmt.Fprintln(w, tui.KeyValue("Assets", len(r.Inventory.Assets)))
	fmt.Fprintln(w, tui.KeyValue("Nodes", r.Nodes))
	fmt.Fprintln(w, tui.KeyValue("Machine-generated ids", r.MachineGenerated))

	list := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(w, tui.WarningStyle.Render(fmt.Sprintf("%s %s (%d)", tui.SymbolWarning, label, len(items))))
		for _, item := range items {
			fmt.Fprintf(w, "  %s %s\n", tui.SymbolBullet, item)
		}
	}
	list("Orphaned fragments", r.Orphans)
	list("Duplicate url_names", r.DuplicateIDs)

	groups := r.Inventory.IdenticalContent()
	joined := make([]string, 0, len(groups))
	for _, g := range groups {
		joined = append(joined, strings.Join(g, " = "))
	}
	list("Identical fragments", joined)

	if len(r.Mappings) > 0 {
		fmt.Fprintln(w, tui.KeyValue("Identifier mappings", strings.Join(r.Mappings, ", ")))
	}
}
