package edxml

import "context"

// Approver handles user interaction before the destructive commit step,
// which deletes consumed fragment files and rewrites the root document.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the course directory name
type Approver interface {
	// RequestApproval prompts for confirmation before the change set is applied.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - plan: Summary of the pending file-system changes
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: Any error that occurred during the approval process
	RequestApproval(ctx context.Context, plan CommitPlan) (bool, error)
}

// CommitPlan summarizes what a commit is about to do.
type CommitPlan struct {
	CourseName string // Base name of the course directory
	Writes     int    // Files to be written (root document, fragments, mapping)
	Renames    int    // Asset files to be renamed
	Deletes    int    // Consumed fragment files to be deleted
}

// Destructive reports whether the commit removes any files.
func (p CommitPlan) Destructive() bool {
	return p.Deletes > 0
}
