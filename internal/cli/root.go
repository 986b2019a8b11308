package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/internal/logging"
	"github.com/pmitros/edxml-tools/internal/tui"
)

const banner = `        _          _
  ___ __| |_ ___ __ | |
 / -_) _' \ \ / '  \| |
 \___\__,_/_\_\_|_|_|_|`

var rootCmd = &cobra.Command{
	Use:   "edxml",
	Short: "Clean up edX course exports",
	Long: banner + `

edxml reassembles an exported edX course into one tree, replaces
machine-generated identifiers with readable ones derived from display
names, and writes the course back in a consistent layout.

Every change is planned first and applied in one ordered commit. Renamed
identifiers are recorded in static/urlname_mapping.json.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or extraction selector
  11 - course.xml not found
  12 - Malformed or missing fragment
  13 - User denied the commit
  14 - Writing the cleaned course failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger returns the stderr logger, styled only on a color terminal.
func newLogger(verbose bool) *logging.ConsoleLogger {
	return logging.NewConsoleLoggerWithWriter(os.Stderr, verbose, tui.StderrStyled())
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
