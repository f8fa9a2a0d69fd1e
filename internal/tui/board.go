package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
)

// RunTimer opens the live timer view for the active session.
func RunTimer(ctx context.Context, svc *engine.Service, out io.Writer) error {
	m := newTimerModel(ctx, svc)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
