package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pmitros/edxml-tools/internal/tui"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) edxml.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval displays a countdown and automatically approves after the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, plan edxml.CommitPlan) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, tui.WarningStyle.Render("DANGER: rewriting course '"+plan.CourseName+"' without confirmation"))
	fmt.Fprintln(a.output, tui.WarningBoxStyle.Render(strings.Join(planLines(plan), "\n")))
	fmt.Fprintln(a.output)

	countdownSeconds := int(edxml.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.output)
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rCommitting in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(time.Second)
		}
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r%s Proceeding with commit...                              \n", tui.SymbolCheck)
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ edxml.Approver = (*ForcedApprover)(nil)
