// Package modal coordinates the overlays of the task list: at most one of
// the detail view and the edit form is open at any time.
package modal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskdesk/internal/logger"
	"taskdesk/internal/models"

	"github.com/sirupsen/logrus"
)

// Kind of overlay.
type Kind int

const (
	Idle Kind = iota
	Viewing
	Editing
)

func (k Kind) String() string {
	switch k {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// State is the open overlay. Task is the viewed or edited task; it is nil
// when Idle and when Editing a new task.
type State struct {
	Kind Kind
	Task *models.Task
}

// Creating reports whether the edit form is for a new task.
func (s State) Creating() bool { return s.Kind == Editing && s.Task == nil }

func (s State) String() string {
	if s.Task == nil {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", s.Kind, s.Task.ID)
}

// ErrNotEditing is returned by Save when the edit form is closed.
var ErrNotEditing = errors.New("no task is being edited")

// Store is the part of the task store the overlays need.
type Store interface {
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, draft models.TaskDraft) (models.Task, error)
}

// Coordinator is the overlay state machine:
//
//	Idle -> Viewing(t)        View
//	Viewing(t) -> Idle        CloseView, then the list is refetched
//	Viewing(t) -> Editing(t)  Edit, with no Idle in between
//	Idle -> Editing(nil)      Create
//	Editing -> Idle           Cancel, or Save success (list refetched)
type Coordinator struct {
	store   Store
	refresh func(context.Context)
	log     logrus.FieldLogger

	mu    sync.Mutex
	state State
	subs  []func(prev, next State)

	// serializes subscriber calls so they observe transitions in order
	notifyMu sync.Mutex
}

// New returns an Idle coordinator. refresh refetches the task list.
func New(store Store, refresh func(context.Context), log logrus.FieldLogger) *Coordinator {
	if refresh == nil {
		refresh = func(context.Context) {}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Coordinator{store: store, refresh: refresh, log: logger.Component(log, "modal")}
}

// State returns the current overlay.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every transition. fn may read State but must
// not open or close overlays.
func (c *Coordinator) Subscribe(fn func(prev, next State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// transition applies next when guard accepts the current state.
func (c *Coordinator) transition(guard func(State) bool, next State) (State, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	prev := c.state
	if guard != nil && !guard(prev) {
		c.mu.Unlock()
		return prev, false
	}
	c.state = next
	subs := append([]func(prev, next State){}, c.subs...)
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"from": prev.String(), "to": next.String()}).Debug("overlay changed")
	for _, fn := range subs {
		fn(prev, next)
	}
	return prev, true
}

func viewingID(id int64) func(State) bool {
	return func(s State) bool { return s.Kind == Viewing && s.Task != nil && s.Task.ID == id }
}

func taskPtr(t models.Task) *models.Task { return &t }

// View opens the detail of task, closing the edit form if it is open, then
// reloads the task from the store. On a load error the passed task stays
// on display and the error is returned.
func (c *Coordinator) View(ctx context.Context, task models.Task) error {
	c.transition(nil, State{Kind: Viewing, Task: taskPtr(task)})
	return c.RefreshDetail(ctx)
}

// RefreshDetail reloads the viewed task. It does nothing when no detail is open.
func (c *Coordinator) RefreshDetail(ctx context.Context) error {
	cur := c.State()
	if cur.Kind != Viewing || cur.Task == nil {
		return nil
	}
	fresh, err := c.store.GetTask(ctx, cur.Task.ID)
	if err != nil {
		c.log.WithError(err).WithField("task_id", cur.Task.ID).Warn("detail refresh failed")
		return err
	}
	// the user may have moved on while the request was in flight
	c.transition(viewingID(fresh.ID), State{Kind: Viewing, Task: taskPtr(fresh)})
	return nil
}

// Edit opens the edit form for task. An open detail view is replaced in a
// single transition.
func (c *Coordinator) Edit(task models.Task) {
	c.transition(nil, State{Kind: Editing, Task: taskPtr(task)})
}

// Create opens an empty edit form.
func (c *Coordinator) Create() {
	c.transition(nil, State{Kind: Editing})
}

// CloseView closes the detail view and refetches the list, since files may
// have changed while it was open. It is a no-op unless a detail is open.
func (c *Coordinator) CloseView(ctx context.Context) {
	if _, ok := c.transition(func(s State) bool { return s.Kind == Viewing }, State{Kind: Idle}); !ok {
		return
	}
	c.refresh(ctx)
}

// Cancel closes the edit form. It always returns to Idle, never to a detail.
func (c *Coordinator) Cancel() {
	c.transition(func(s State) bool { return s.Kind == Editing }, State{Kind: Idle})
}

// Dismiss closes whatever is open without refetching.
func (c *Coordinator) Dismiss() {
	c.transition(func(s State) bool { return s.Kind != Idle }, State{Kind: Idle})
}

// Save creates or updates the task of the open form. On success the form
// closes and the list is refetched before Save returns; on failure the form
// stays open and the error is returned.
func (c *Coordinator) Save(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	cur := c.State()
	if cur.Kind != Editing {
		return models.Task{}, ErrNotEditing
	}

	var (
		saved models.Task
		err   error
	)
	if cur.Task == nil {
		saved, err = c.store.CreateTask(ctx, draft)
	} else {
		saved, err = c.store.UpdateTask(ctx, cur.Task.ID, draft)
	}
	if err != nil {
		c.log.WithError(err).Warn("save failed")
		return models.Task{}, err
	}

	c.transition(func(s State) bool { return s.Kind == Editing }, State{Kind: Idle})
	c.refresh(ctx)
	return saved, nil
}
