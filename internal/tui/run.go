package tui

import (
	"context"
	"errors"

	"taskdesk/internal/models"
	"taskdesk/internal/session"
	"taskdesk/internal/tasklist"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the task list until the user quits or ctx ends. b must be the
// Bridge the orchestrator was built with.
func Run(ctx context.Context, o *tasklist.Orchestrator, b *Bridge, theme *session.Theme, account models.Account) error {
	// cancelled on exit so pending confirmations and alerts stop waiting
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(ctx, o, theme, account)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	b.attach(p.Send, ctx.Done())
	defer b.attach(nil, nil)
	o.Subscribe(b.Changed)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
