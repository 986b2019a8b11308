package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireCoursePath validates that exactly one course_path argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireCoursePath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <course_path>

Usage: %s

Example:
  %s ./course`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireCoursePathAndFiles validates a course_path followed by any number
// of files.
func RequireCoursePathAndFiles(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <course_path>

Usage: %s

Example:
  %s ./course policies/2013_Spring/policy.json`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}
