package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// RunConfirm runs the prompt on in/out until the user answers or ctx is
// done. A cancelled context wins over any answer.
func RunConfirm(ctx context.Context, model ConfirmModel, in io.Reader, out io.Writer) (ConfirmModel, error) {
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model, ctxErr
	}
	if err != nil {
		return model, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	result, ok := final.(ConfirmModel)
	if !ok {
		return model, fmt.Errorf("confirmation prompt returned %T", final)
	}
	return result, nil
}
