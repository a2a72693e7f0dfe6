// Package confirm gates destructive actions behind an explicit yes.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrCancelled is returned when the user declined a confirmation.
var ErrCancelled = errors.New("cancelled by user")

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(ctx context.Context, prompt string) (bool, error)

func (f Func) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Always answers yes. Used for --yes flags.
var Always Confirmer = Func(func(context.Context, string) (bool, error) { return true, nil })

// Never answers no.
var Never Confirmer = Func(func(context.Context, string) (bool, error) { return false, nil })

// Require returns nil when c approves, ErrCancelled when it declines.
func Require(ctx context.Context, c Confirmer, prompt string) error {
	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// Prompter asks on a terminal and reads y/yes (case-insensitive) as approval.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
