package tui

import (
	"fmt"
	"strings"

	"taskdesk/internal/modal"
	"taskdesk/internal/models"
	"taskdesk/internal/present"
	"taskdesk/internal/tasklist"
	"taskdesk/internal/taskstore"

	"github.com/charmbracelet/lipgloss"
)

const listTitleWidth = 36

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header() + "\n")
	if m.snap.Banner != "" {
		b.WriteString(m.styles.banner.Render(m.snap.Banner) + "\n")
	}
	b.WriteString("\n")

	switch {
	case len(m.alerts) > 0:
		b.WriteString(m.styles.overlay.Render(m.alertView(m.alerts[0])))
	case m.form != nil:
		b.WriteString(m.styles.overlay.Render(m.form.view(m.styles, m.snap.Users, m.theme.Dark())))
	case m.snap.Modal.Kind == modal.Viewing && m.snap.Modal.Task != nil:
		b.WriteString(m.styles.overlay.Render(m.detailView(*m.snap.Modal.Task)))
	default:
		b.WriteString(m.filterLine() + "\n\n")
		b.WriteString(m.listView())
	}

	b.WriteString("\n\n" + m.footer())
	return b.String()
}

func (m Model) header() string {
	scope := "All tasks"
	if m.snap.Scope == tasklist.ScopeMine {
		scope = "My tasks"
	}
	line := m.styles.title.Render("taskdesk") + "  " + scope
	if m.user != "" {
		line += m.styles.muted.Render("  signed in as " + m.user)
	}
	if m.snap.Loading {
		line += m.styles.muted.Render("  loading...")
	}
	return line
}

func (m Model) filterLine() string {
	c := m.snap.Criteria
	search := m.search.View()
	if !m.searching {
		search = "Search: " + orAny(m.snap.SearchText)
	}
	if m.snap.Scope == tasklist.ScopeMine {
		return search + m.styles.muted.Render("  (filters apply to all tasks)")
	}
	status, priority := "any", "any"
	if c.Status != "" {
		status = present.StatusLabel(c.Status)
	}
	if c.Priority != "" {
		priority = present.PriorityLabel(c.Priority)
	}
	assignee := "any"
	if c.Assignee != 0 {
		assignee = userName(m.snap.Users, c.Assignee)
	}
	return fmt.Sprintf("%s  Status: %s  Priority: %s  Assignee: %s", search, status, priority, assignee)
}

func orAny(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) listView() string {
	if len(m.snap.Tasks) == 0 {
		if m.snap.Loading {
			return m.styles.muted.Render("Loading tasks...")
		}
		return m.styles.muted.Render("No tasks found")
	}
	dark := m.theme.Dark()
	rows := make([]string, 0, len(m.snap.Tasks))
	for i, t := range m.snap.Tasks {
		row := fmt.Sprintf("%-5d %-*s %s %s  %s  %s",
			t.ID,
			listTitleWidth, present.Truncate(t.Title, listTitleWidth),
			present.StatusBadge(t.Status, dark),
			present.PriorityBadge(t.Priority, dark),
			present.Assignee(t),
			m.styles.muted.Render(present.DueDate(t)),
		)
		if i == m.cursor {
			row = m.styles.selected.Render("> " + row)
		} else {
			row = "  " + row
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m Model) detailView(t models.Task) string {
	dark := m.theme.Dark()
	var b strings.Builder
	b.WriteString(m.styles.title.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)) + "\n")
	b.WriteString(present.StatusBadge(t.Status, dark) + " " + present.PriorityBadge(t.Priority, dark) + "\n\n")
	if t.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(70).Render(t.Description) + "\n\n")
	}
	b.WriteString(m.styles.label.Render("Assignee") + " " + present.Assignee(t) + "\n")
	b.WriteString(m.styles.label.Render("Created by") + " " + t.CreatorName() + "\n")
	b.WriteString(m.styles.label.Render("Due") + " " + present.DueDate(t) + "\n\n")

	b.WriteString(m.styles.title.Render(fmt.Sprintf("Attachments (%d)", len(t.Files))) + "\n")
	if len(t.Files) == 0 {
		b.WriteString(m.styles.muted.Render("No attachments"))
	}
	for i, f := range t.Files {
		line := fmt.Sprintf("%s  %s", f.OriginalFileName, m.styles.muted.Render(present.FileSize(f.FileSize)))
		if i == m.fileCursor {
			line = m.styles.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if m.uploading {
		b.WriteString("\n" + m.upload.View())
	}
	return b.String()
}

func (m Model) alertView(a alertMsg) string {
	text := m.styles.banner.Render(a.name) + "\n\n" + taskstore.Message(a.err)
	if n := len(m.alerts) - 1; n > 0 {
		text += m.styles.muted.Render(fmt.Sprintf("\n\n%d more", n))
	}
	return text
}

func (m Model) footer() string {
	if len(m.alerts) > 0 {
		return m.styles.prompt.Render("Press any key to continue")
	}
	if m.pending != nil {
		return m.styles.prompt.Render(m.pending.prompt + " [y/N]")
	}
	if m.form != nil {
		return m.styles.notice.Render(m.notice)
	}
	var help string
	switch {
	case m.uploading:
		help = "enter: upload  esc: cancel"
	case m.snap.Modal.Kind == modal.Viewing:
		help = "e: edit  d: delete  u: upload  o: download  x: delete file  esc: close"
	case m.searching:
		help = "enter: search now  esc: done"
	default:
		help = "enter: open  n: new  e: edit  d: delete  /: search  s/p/a: filters  c: clear  m: mine/all  t: theme  q: quit"
	}
	out := m.styles.muted.Render(help)
	if m.notice != "" {
		out = m.styles.notice.Render(m.notice) + "\n" + out
	}
	return out
}
