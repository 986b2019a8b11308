package cli

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/scaffold"
	"github.com/pmitros/edxml-tools/internal/tui"
)

var initCmd = &cobra.Command{
	Use:   "init <course_path>",
	Short: "Write a starter edxml.yaml into a course export",
	Long: `Init writes edxml.yaml into the course directory with every setting at
its default and the optional ones commented out.

An existing edxml.yaml is kept unless --force is given.

Examples:
  edxml init ./course
  edxml init ./course --force`,
	Args:              RequireCoursePath,
	ValidArgsFunction: completeDirectories,
	RunE:              runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing edxml.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	sourcePath := coursePath(args[0])
	verbose := getVerboseFlag(cmd)

	s := scaffold.NewScaffolder(filesystem.NewOSFileSystem(), newLogger(verbose))
	target, err := s.WriteConfig(sourcePath, path.Base(sourcePath), initForce)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render(tui.SymbolCheck+" Created "+target))
	return nil
}
