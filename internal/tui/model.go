// Package tui is the interactive terminal view of the task list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskdesk/internal/attachment"
	"taskdesk/internal/confirm"
	"taskdesk/internal/modal"
	"taskdesk/internal/models"
	"taskdesk/internal/session"
	"taskdesk/internal/tasklist"
	"taskdesk/internal/taskstore"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var statusFilters = []models.TaskStatus{"", models.StatusTodo, models.StatusInProgress, models.StatusDone}

var priorityFilters = []models.TaskPriority{"", models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent}

// Model is the bubbletea model of the task list screen.
type Model struct {
	ctx   context.Context
	o     *tasklist.Orchestrator
	theme *session.Theme
	user  string

	snap       tasklist.Snapshot
	cursor     int
	fileCursor int

	search    textinput.Model
	searching bool
	upload    textinput.Model
	uploading bool
	form      *form
	pending   *confirmMsg
	alerts    []alertMsg
	notice    string

	width  int
	height int
	styles styles
}

// NewModel builds the model. The orchestrator must already be started or
// be started by the returned model's Init.
func NewModel(ctx context.Context, o *tasklist.Orchestrator, theme *session.Theme, account models.Account) Model {
	search := textinput.New()
	search.Placeholder = "Search by title"
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 40

	upload := textinput.New()
	upload.Placeholder = `paths separated by spaces, "quote paths with spaces"`
	upload.Prompt = "Upload: "
	upload.Width = 60

	return Model{
		ctx:    ctx,
		o:      o,
		theme:  theme,
		user:   account.DisplayName(),
		snap:   o.Snapshot(),
		search: search,
		upload: upload,
		styles: newStyles(theme.Dark()),
	}
}

func (m Model) Init() tea.Cmd {
	return m.run("load", "", func(ctx context.Context) error { return m.o.Start(ctx) })
}

// do executes fn off the UI goroutine and reports back with a doneMsg.
// The returned string is shown when fn succeeds.
func (m Model) do(action string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		notice, err := fn(ctx)
		return doneMsg{action: action, notice: notice, err: err}
	}
}

func (m Model) run(action, notice string, fn func(ctx context.Context) error) tea.Cmd {
	return m.do(action, func(ctx context.Context) (string, error) { return notice, fn(ctx) })
}

func (m Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Tasks) {
		return models.Task{}, false
	}
	return m.snap.Tasks[m.cursor], true
}

func (m Model) viewed() (models.Task, bool) {
	if m.snap.Modal.Kind != modal.Viewing || m.snap.Modal.Task == nil {
		return models.Task{}, false
	}
	return *m.snap.Modal.Task, true
}

// apply takes a new snapshot and keeps the local widgets in step with it.
func (m *Model) apply(s tasklist.Snapshot) {
	m.snap = s
	if m.cursor >= len(s.Tasks) {
		m.cursor = len(s.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	switch s.Modal.Kind {
	case modal.Editing:
		if m.form == nil || m.form.taskID != editedID(s.Modal) {
			m.form = newForm(s.Modal)
		}
	default:
		m.form = nil
	}

	if task, ok := m.viewed(); ok {
		if m.fileCursor >= len(task.Files) {
			m.fileCursor = len(task.Files) - 1
		}
	} else {
		m.uploading = false
	}
	if m.fileCursor < 0 {
		m.fileCursor = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case changedMsg:
		m.apply(m.o.Snapshot())
		return m, nil

	case doneMsg:
		m.apply(m.o.Snapshot())
		switch {
		case msg.err == nil:
			if msg.notice != "" {
				m.notice = msg.notice
			}
		case errors.Is(msg.err, confirm.ErrCancelled):
		case msg.action == "save" && m.form != nil:
			m.form.saving = false
			m.form.err = taskstore.Message(msg.err)
		case taskstore.Message(msg.err) == m.snap.Banner:
			// already on the banner
		default:
			m.notice = fmt.Sprintf("%s failed: %s", msg.action, taskstore.Message(msg.err))
		}
		return m, nil

	case confirmMsg:
		if m.pending != nil {
			// one question at a time
			msg.reply <- false
			return m, nil
		}
		m.pending = &msg
		return m, nil

	case alertMsg:
		m.alerts = append(m.alerts, msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch {
	case len(m.alerts) > 0:
		return m.dismissAlert(), nil
	case m.pending != nil:
		return m.handleConfirm(msg)
	case m.form != nil:
		return m.handleForm(msg)
	case m.uploading:
		return m.handleUpload(msg)
	case m.snap.Modal.Kind == modal.Viewing:
		return m.handleDetail(msg)
	case m.searching:
		return m.handleSearch(msg)
	default:
		return m.handleList(msg)
	}
}

// dismissAlert acknowledges the oldest alert; any key does.
func (m Model) dismissAlert() Model {
	close(m.alerts[0].ack)
	m.alerts = append([]alertMsg(nil), m.alerts[1:]...)
	return m
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch strings.ToLower(msg.String()) {
	case "y":
		answer = true
	case "n", "esc", "enter":
	default:
		return m, nil
	}
	m.pending.reply <- answer
	m.pending = nil
	return m, nil
}

func (m Model) handleList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.o
	s := m.snap
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(s.Tasks)-1 {
			m.cursor++
		}
	case "enter":
		if task, ok := m.selected(); ok {
			m.fileCursor = 0
			return m, m.run("open", "", func(ctx context.Context) error { return o.View(ctx, task) })
		}
	case "/":
		m.searching = true
		m.search.SetValue(s.SearchText)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "s":
		next := cycle(statusFilters, s.Criteria.Status, 1)
		return m, m.run("filter", "", func(context.Context) error { o.SetStatus(next); return nil })
	case "p":
		next := cycle(priorityFilters, s.Criteria.Priority, 1)
		return m, m.run("filter", "", func(context.Context) error { o.SetPriority(next); return nil })
	case "a":
		next := cycle(assigneeOptions(s.Users), s.Criteria.Assignee, 1)
		return m, m.run("filter", "", func(context.Context) error { o.SetAssignee(next); return nil })
	case "c":
		m.search.SetValue("")
		return m, m.run("clear", "", func(context.Context) error { o.ClearFilters(); return nil })
	case "m":
		scope := tasklist.ScopeMine
		if s.Scope == tasklist.ScopeMine {
			scope = tasklist.ScopeAll
		}
		m.cursor = 0
		return m, m.run("scope", "", func(ctx context.Context) error { return o.SetScope(ctx, scope) })
	case "r":
		return m, m.run("refresh", "", o.Refresh)
	case "n":
		o.Create()
		m.apply(o.Snapshot())
	case "e":
		if task, ok := m.selected(); ok {
			o.Edit(task)
			m.apply(o.Snapshot())
		}
	case "d":
		if task, ok := m.selected(); ok {
			return m, m.run("delete", "Task deleted", func(ctx context.Context) error { return o.Delete(ctx, task.ID) })
		}
	case "t":
		return m.toggleTheme()
	case "x":
		m.notice = ""
		o.DismissBanner()
	}
	return m, nil
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	dark, err := m.theme.Toggle()
	if err != nil {
		m.notice = "could not save theme: " + err.Error()
	}
	m.styles = newStyles(dark)
	return m, nil
}

func (m Model) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.o
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, m.run("search", "", func(context.Context) error { o.FlushSearch(); return nil })
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		o.Search(v)
		m.snap.SearchText = v
	}
	return m, cmd
}

func (m Model) handleDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.o
	task, _ := m.viewed()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		return m, m.run("close", "", func(ctx context.Context) error { o.CloseView(ctx); return nil })
	case "e":
		o.Edit(task)
		m.apply(o.Snapshot())
	case "d":
		return m, m.run("delete", "Task deleted", o.DeleteViewed)
	case "up", "k":
		if m.fileCursor > 0 {
			m.fileCursor--
		}
	case "down", "j":
		if m.fileCursor < len(task.Files)-1 {
			m.fileCursor++
		}
	case "u":
		m.uploading = true
		m.upload.SetValue("")
		return m, m.upload.Focus()
	case "o":
		if f, ok := m.selectedFile(task); ok {
			return m, m.do("download", func(ctx context.Context) (string, error) {
				path, err := o.Download(ctx, f.ID)
				if err != nil {
					return "", err
				}
				return "Saved " + path, nil
			})
		}
	case "x":
		if f, ok := m.selectedFile(task); ok {
			return m, m.run("delete file", "File deleted", func(ctx context.Context) error { return o.DeleteFile(ctx, f.ID) })
		}
	case "t":
		return m.toggleTheme()
	}
	return m, nil
}

func (m Model) selectedFile(task models.Task) (models.Attachment, bool) {
	if m.fileCursor < 0 || m.fileCursor >= len(task.Files) {
		return models.Attachment{}, false
	}
	return task.Files[m.fileCursor], true
}

func (m Model) handleUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.o
	switch msg.String() {
	case "esc":
		m.uploading = false
		m.upload.Blur()
		return m, nil
	case "enter":
		m.uploading = false
		m.upload.Blur()
		paths, err := splitPaths(m.upload.Value())
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		if len(paths) == 0 {
			return m, nil
		}
		return m, m.do("upload", func(ctx context.Context) (string, error) {
			results, err := o.Upload(ctx, attachment.UploadsFromPaths(paths))
			if err != nil {
				return "", err
			}
			ok := 0
			for _, r := range results {
				if r.Err == nil {
					ok++
				}
			}
			return fmt.Sprintf("Uploaded %d of %d files", ok, len(results)), nil
		})
	}
	var cmd tea.Cmd
	m.upload, cmd = m.upload.Update(msg)
	return m, cmd
}

func (m Model) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.o
	f := m.form
	if f.saving {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		o.Cancel()
		m.apply(o.Snapshot())
		return m, nil
	case "ctrl+s":
		draft, err := f.draft()
		if err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.saving = true
		f.err = ""
		return m, m.run("save", "Task saved", func(ctx context.Context) error {
			_, err := o.Save(ctx, draft)
			return err
		})
	}
	return m, f.update(msg, m.snap.Users)
}
