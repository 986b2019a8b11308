package ui

import (
	"fmt"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// planLines describes a commit plan one line per kind of change.
func planLines(plan edxml.CommitPlan) []string {
	return []string{
		fmt.Sprintf("Course directory: %s", plan.CourseName),
		fmt.Sprintf("Files written:    %d", plan.Writes),
		fmt.Sprintf("Assets renamed:   %d", plan.Renames),
		fmt.Sprintf("Files deleted:    %d (merged fragments)", plan.Deletes),
	}
}
