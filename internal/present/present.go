// Package present maps task enums to their labels and terminal colors.
package present

import (
	"fmt"
	"strings"

	"taskdesk/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a light/dark color pair.
type Palette struct {
	Light lipgloss.Color
	Dark  lipgloss.Color
}

type attrs struct {
	Label string
	FG    Palette
	BG    Palette
}

var (
	blue   = attrs{FG: Palette{"#1E40AF", "#BFDBFE"}, BG: Palette{"#DBEAFE", "#1E3A8A"}}
	yellow = attrs{FG: Palette{"#854D0E", "#FEF08A"}, BG: Palette{"#FEF9C3", "#713F12"}}
	green  = attrs{FG: Palette{"#166534", "#BBF7D0"}, BG: Palette{"#DCFCE7", "#14532D"}}
	gray   = attrs{FG: Palette{"#1F2937", "#E5E7EB"}, BG: Palette{"#F3F4F6", "#374151"}}
	orange = attrs{FG: Palette{"#9A3412", "#FED7AA"}, BG: Palette{"#FFEDD5", "#7C2D12"}}
	red    = attrs{FG: Palette{"#991B1B", "#FECACA"}, BG: Palette{"#FEE2E2", "#7F1D1D"}}
)

func labelled(a attrs, label string) attrs {
	a.Label = label
	return a
}

// statusAttrs and priorityAttrs are indexed by the ordinal of the enum
// (models.TaskStatus.Index, models.TaskPriority.Index).
var statusAttrs = [...]attrs{
	labelled(blue, "To Do"),
	labelled(yellow, "In Progress"),
	labelled(green, "Done"),
}

var priorityAttrs = [...]attrs{
	labelled(gray, "Low"),
	labelled(yellow, "Medium"),
	labelled(orange, "High"),
	labelled(red, "Urgent"),
}

// Adding an enum value without a row here fails to compile.
var (
	_ [0]struct{} = [len(statusAttrs) - models.StatusCount]struct{}{}
	_ [0]struct{} = [len(priorityAttrs) - models.PriorityCount]struct{}{}
)

var unknown = labelled(gray, "Unknown")

func statusOf(s models.TaskStatus) attrs {
	if i := s.Index(); i >= 0 {
		return statusAttrs[i]
	}
	return unknown
}

func priorityOf(p models.TaskPriority) attrs {
	if i := p.Index(); i >= 0 {
		return priorityAttrs[i]
	}
	return unknown
}

// StatusLabel returns the human label of s.
func StatusLabel(s models.TaskStatus) string { return statusOf(s).Label }

// PriorityLabel returns the human label of p.
func PriorityLabel(p models.TaskPriority) string { return priorityOf(p).Label }

func badge(a attrs, dark bool) lipgloss.Style {
	fg, bg := a.FG.Light, a.BG.Light
	if dark {
		fg, bg = a.FG.Dark, a.BG.Dark
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(fg).
		Background(bg).
		Padding(0, 1)
}

// StatusBadge renders s as a colored pill.
func StatusBadge(s models.TaskStatus, dark bool) string {
	a := statusOf(s)
	return badge(a, dark).Render(a.Label)
}

// PriorityBadge renders p as a colored pill.
func PriorityBadge(p models.TaskPriority, dark bool) string {
	a := priorityOf(p)
	return badge(a, dark).Render(a.Label)
}

// FileSize formats a byte count the way the detail view lists attachments.
func FileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// Assignee returns the assignee display name or "Unassigned".
func Assignee(t models.Task) string {
	if name := t.AssigneeName(); name != "" {
		return name
	}
	return "Unassigned"
}

// DueDate returns the due date or "-".
func DueDate(t models.Task) string {
	if t.DueDate == nil || t.DueDate.IsZero() {
		return "-"
	}
	return t.DueDate.String()
}

// Truncate shortens s to width runes, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
