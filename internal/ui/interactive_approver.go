package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pmitros/edxml-tools/internal/tui"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the course
// directory name before merged fragments are deleted.
//
// On a terminal the prompt is a bubbletea program; otherwise one line is
// read from input.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
	useTUI  bool
}

// NewInteractiveApprover creates a new InteractiveApprover on stdin and stderr.
func NewInteractiveApprover(verbose bool) edxml.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
		useTUI:  tui.IsInteractive(),
	}
}

// RequestApproval prompts the user to type the course name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, plan edxml.CommitPlan) (bool, error) {
	if a.useTUI {
		return a.requestWithTUI(ctx, plan)
	}

	fmt.Fprintf(a.output, "\n%s WARNING: You are about to rewrite the course '%s'\n", tui.SymbolWarning, plan.CourseName)
	for _, line := range planLines(plan) {
		fmt.Fprintf(a.output, "  %s\n", line)
	}
	fmt.Fprintln(a.output, "Merged fragment files will be permanently deleted from disk!")
	fmt.Fprintf(a.output, "\nTo confirm, type the course name '%s' and press Enter: ", plan.CourseName)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		return a.verdict(input, plan.CourseName), nil
	}
}

func (a *InteractiveApprover) requestWithTUI(ctx context.Context, plan edxml.CommitPlan) (bool, error) {
	model := tui.NewConfirmModel(
		"Merged fragment files will be permanently deleted",
		planLines(plan),
		plan.CourseName,
	)
	result, err := tui.RunConfirm(ctx, model, a.input, a.output)
	if err != nil {
		return false, err
	}
	if result.Cancelled() {
		fmt.Fprintf(a.output, "%s Operation cancelled.\n", tui.SymbolCross)
		return false, nil
	}
	return a.verdict(strings.TrimSpace(result.Value()), plan.CourseName), nil
}

func (a *InteractiveApprover) verdict(input, courseName string) bool {
	if input == courseName {
		fmt.Fprintf(a.output, "%s Confirmed. Proceeding with commit...\n", tui.SymbolCheck)
		return true
	}
	fmt.Fprintf(a.output, "%s Input '%s' does not match course name '%s'. Operation cancelled.\n", tui.SymbolCross, input, courseName)
	return false
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ edxml.Approver = (*InteractiveApprover)(nil)
