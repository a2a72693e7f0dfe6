package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskdesk/internal/modal"
	"taskdesk/internal/models"
	"taskdesk/internal/session"
	"taskdesk/internal/tasklist"
	"taskdesk/internal/taskstore"
	"taskdesk/internal/testutil"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type harness struct {
	client *taskstore.Client
	o      *tasklist.Orchestrator
	bridge *Bridge
	posted chan tea.Msg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := testutil.NewServer(t)
	alice := srv.CreateUser(t, "alice@example.com", "secret1", "Alice", "Adams")
	client, err := taskstore.New(taskstore.Options{
		BaseURL: srv.APIURL(),
		Tokens:  taskstore.StaticToken(srv.Token(t, alice)),
	})
	require.NoError(t, err)

	h := &harness{client: client, bridge: NewBridge(), posted: make(chan tea.Msg, 16)}
	exited := make(chan struct{})
	t.Cleanup(func() { close(exited) })
	h.bridge.attach(func(msg tea.Msg) {
		if _, ok := msg.(changedMsg); ok {
			return
		}
		h.posted <- msg
	}, exited)
	h.o = tasklist.New(tasklist.Options{
		Store:          client,
		Confirmer:      h.bridge,
		Alerter:        h.bridge,
		SearchDebounce: time.Hour,
	})
	t.Cleanup(h.o.Close)
	return h
}

func (h *harness) seed(t *testing.T, drafts ...models.TaskDraft) {
	t.Helper()
	for _, d := range drafts {
		_, err := h.client.CreateTask(context.Background(), d)
		require.NoError(t, err)
	}
}

func (h *harness) model(t *testing.T) Model {
	t.Helper()
	theme := session.NewTheme(session.NewMemoryPersister())
	m := NewModel(context.Background(), h.o, theme, models.Account{FirstName: "Alice", LastName: "Adams"})
	return finish(t, m, m.Init())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, k string) (Model, tea.Cmd) {
	next, cmd := m.Update(key(k))
	return next.(Model), cmd
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = press(m, string(r))
	}
	return m
}

// finish runs an action command and feeds its result back.
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(doneMsg)
	require.True(t, ok, "expected doneMsg, got %T", msg)
	next, _ := m.Update(msg)
	return next.(Model)
}

func todo(title string) models.TaskDraft {
	return models.TaskDraft{Title: title, Status: models.StatusTodo, Priority: models.PriorityMedium}
}

func TestInitLoadsTasks(t *testing.T) {
	h := newHarness(t)
	h.seed(t, todo("Fix login"), todo("Write docs"))
	m := h.model(t)

	require.Len(t, m.snap.Tasks, 2)
	view := m.View()
	require.Contains(t, view, "Fix login")
	require.Contains(t, view, "Write docs")
	require.Contains(t, view, "Alice Adams")
}

func TestCreateThroughForm(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, _ = press(m, "n")
	require.NotNil(t, m.form)
	require.True(t, m.form.creating)

	m = typeText(m, "Ship it")
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")
	m, _ = press(m, "right")
	require.Equal(t, models.StatusInProgress, m.form.status)

	m, cmd := press(m, "ctrl+s")
	m = finish(t, m, cmd)

	require.Nil(t, m.form)
	require.Equal(t, modal.Idle, m.snap.Modal.Kind)
	require.Len(t, m.snap.Tasks, 1)
	require.Equal(t, "Ship it", m.snap.Tasks[0].Title)
	require.Equal(t, models.StatusInProgress, m.snap.Tasks[0].Status)
	require.Equal(t, "Task saved", m.notice)
}

func TestSaveFailureKeepsFormOpen(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, _ = press(m, "n")
	m, cmd := press(m, "ctrl+s")
	m = finish(t, m, cmd)

	require.NotNil(t, m.form)
	require.False(t, m.form.saving)
	require.Contains(t, m.form.err, "Title is required")
	require.Equal(t, modal.Editing, m.snap.Modal.Kind)

	m, _ = press(m, "esc")
	require.Nil(t, m.form)
}

func TestBadDueDateIsCaughtLocally(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, _ = press(m, "n")
	m = typeText(m, "Dated")
	m.form.due.SetValue("tomorrow")
	m, cmd := press(m, "ctrl+s")
	require.Nil(t, cmd)
	require.Contains(t, m.form.err, "YYYY-MM-DD")
}

func TestDeleteAsksFirst(t *testing.T) {
	h := newHarness(t)
	h.seed(t, todo("Doomed"))
	m := h.model(t)

	answer := func(m Model, reply string) Model {
		m, cmd := press(m, "d")
		done := make(chan tea.Msg, 1)
		go func() { done <- cmd() }()

		var q tea.Msg
		select {
		case q = <-h.posted:
		case <-time.After(2 * time.Second):
			t.Fatal("no confirmation asked")
		}
		next, _ := m.Update(q)
		m = next.(Model)
		require.NotNil(t, m.pending)
		require.Contains(t, m.View(), "[y/N]")

		m, _ = press(m, reply)
		require.Nil(t, m.pending)
		next, _ = m.Update(<-done)
		return next.(Model)
	}

	m = answer(m, "n")
	require.Len(t, m.snap.Tasks, 1)
	require.Empty(t, m.notice)

	m = answer(m, "y")
	require.Empty(t, m.snap.Tasks)
	require.Equal(t, "Task deleted", m.notice)
}

func TestStatusFilterCycles(t *testing.T) {
	h := newHarness(t)
	done := todo("Finished")
	done.Status = models.StatusDone
	h.seed(t, todo("Open"), done)
	m := h.model(t)

	m, cmd := press(m, "s")
	m = finish(t, m, cmd)
	require.Equal(t, models.StatusTodo, m.snap.Criteria.Status)
	require.Len(t, m.snap.Tasks, 1)
	require.Equal(t, "Open", m.snap.Tasks[0].Title)
	require.Contains(t, m.View(), "Status: To Do")

	m, cmd = press(m, "c")
	m = finish(t, m, cmd)
	require.True(t, m.snap.Criteria.IsEmpty())
	require.Len(t, m.snap.Tasks, 2)
}

func TestSearchAppliesOnEnter(t *testing.T) {
	h := newHarness(t)
	h.seed(t, todo("Fix login"), todo("Write docs"))
	m := h.model(t)

	m, _ = press(m, "/")
	require.True(t, m.searching)
	m = typeText(m, "login")
	require.Equal(t, "login", h.o.Snapshot().SearchText)
	require.Empty(t, h.o.Snapshot().Criteria.SearchTerm)

	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)
	require.False(t, m.searching)
	require.Equal(t, "login", m.snap.Criteria.SearchTerm)
	require.Len(t, m.snap.Tasks, 1)
}

func TestDetailOpenAndClose(t *testing.T) {
	h := newHarness(t)
	h.seed(t, todo("Look at me"))
	m := h.model(t)

	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)
	require.Equal(t, modal.Viewing, m.snap.Modal.Kind)
	require.Contains(t, m.View(), "Attachments (0)")

	m, _ = press(m, "e")
	require.NotNil(t, m.form)
	require.False(t, m.form.creating)
	require.Equal(t, "Look at me", m.form.title.Value())

	m, _ = press(m, "esc")
	require.Nil(t, m.form)
	require.Equal(t, modal.Idle, m.snap.Modal.Kind)
}

func (h *harness) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-h.posted:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("nothing posted")
		return nil
	}
}

func TestAlertWaitsForDismissal(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	returned := make(chan string, 2)
	alert := func(name string) {
		h.bridge.Alert(name, errors.New("disk full"))
		returned <- name
	}

	go alert("a.txt")
	next, _ := m.Update(h.next(t))
	m = next.(Model)
	go alert("b.txt")
	next, _ = m.Update(h.next(t))
	m = next.(Model)

	view := m.View()
	require.Contains(t, view, "a.txt")
	require.Contains(t, view, "disk full")
	require.Contains(t, view, "1 more")
	require.Never(t, func() bool { return len(returned) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	m, _ = press(m, "x")
	require.Equal(t, "a.txt", <-returned)
	require.Contains(t, m.View(), "b.txt")
	require.NotContains(t, m.View(), "1 more")

	// the key only dismisses; it does not reach the list
	m, cmd := press(m, "q")
	require.Nil(t, cmd)
	require.Equal(t, "b.txt", <-returned)
	require.Empty(t, m.alerts)
	require.NotContains(t, m.View(), "disk full")
}

func TestAlertReleasedWhenProgramExits(t *testing.T) {
	b := NewBridge()
	exited := make(chan struct{})
	b.attach(func(tea.Msg) {}, exited)

	returned := make(chan struct{})
	go func() {
		b.Alert("a.txt", errors.New("disk full"))
		close(returned)
	}()
	require.Never(t, func() bool {
		select {
		case <-returned:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(exited)
	require.Eventually(t, func() bool {
		select {
		case <-returned:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestUploadPathWithSpaces(t *testing.T) {
	h := newHarness(t)
	h.seed(t, todo("With files"))
	m := h.model(t)

	path := filepath.Join(t.TempDir(), "meeting notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("agenda"), 0o600))

	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)
	m, _ = press(m, "u")
	require.True(t, m.uploading)
	m.upload.SetValue(`"` + path + `"`)

	m, cmd = press(m, "enter")
	m = finish(t, m, cmd)
	require.Equal(t, "Uploaded 1 of 1 files", m.notice)
	require.Len(t, m.snap.Modal.Task.Files, 1)
	require.Equal(t, "meeting notes.txt", m.snap.Modal.Task.Files[0].OriginalFileName)
	require.Contains(t, m.View(), "meeting notes.txt")
}

func TestUploadUnclosedQuote(t *testing.T) {
	h := newHarness(t)
	h.seed(t, todo("With files"))
	m := h.model(t)

	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)
	m, _ = press(m, "u")
	m.upload.SetValue(`"half open.txt`)
	m, cmd = press(m, "enter")
	require.Nil(t, cmd)
	require.Equal(t, errUnclosedQuote.Error(), m.notice)
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	before := m.theme.Dark()
	m, _ = press(m, "t")
	require.NotEqual(t, before, m.theme.Dark())
}

func TestCycle(t *testing.T) {
	opts := []string{"", "a", "b"}
	require.Equal(t, "a", cycle(opts, "", 1))
	require.Equal(t, "", cycle(opts, "b", 1))
	require.Equal(t, "b", cycle(opts, "", -1))
	require.Equal(t, "", cycle(opts, "zzz", 1))
}
