// Package tasklist owns the task collection shown to the user and keeps it
// in step with the remote store. Every mutation is followed by a refetch;
// the collection is only ever replaced wholesale by a fetch result.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskdesk/internal/attachment"
	"taskdesk/internal/cache"
	"taskdesk/internal/confirm"
	"taskdesk/internal/debounce"
	"taskdesk/internal/filter"
	"taskdesk/internal/logger"
	"taskdesk/internal/modal"
	"taskdesk/internal/models"
	"taskdesk/internal/taskstore"

	"github.com/sirupsen/logrus"
)

// Scope selects which collection is listed.
type Scope int

const (
	// ScopeAll lists the team's tasks, narrowed by the filters.
	ScopeAll Scope = iota
	// ScopeMine lists tasks assigned to or created by the user. Filters do
	// not apply.
	ScopeMine
)

func (s Scope) String() string {
	if s == ScopeMine {
		return "mine"
	}
	return "all"
}

// Store is the remote API as the orchestrator uses it.
type Store interface {
	modal.Store
	attachment.Store
	ListTasks(ctx context.Context, criteria models.FilterCriteria) ([]models.Task, error)
	ListMyTasks(ctx context.Context) ([]models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ErrNoDetail is returned by file operations when no task detail is open.
var ErrNoDetail = errors.New("no task is open")

// Snapshot is a consistent copy of the orchestrator state.
type Snapshot struct {
	Tasks []models.Task
	Users []models.User
	// SearchText is the raw search input; Criteria.SearchTerm lags it by the debounce window
	SearchText string
	Criteria   models.FilterCriteria
	Scope      Scope
	Loading    bool
	Banner     string
	Modal      modal.State
}

// Options configures an Orchestrator.
type Options struct {
	Store     Store
	Confirmer confirm.Confirmer
	Alerter   attachment.Alerter
	Sink      attachment.Sink
	// SearchDebounce is the quiescence window of the search input
	SearchDebounce time.Duration
	// UsersTTL is how long the user directory is reused
	UsersTTL time.Duration
	// CallTimeout bounds each remote call; zero means no extra bound
	CallTimeout time.Duration
	Log         logrus.FieldLogger
}

// Orchestrator composes search, filters, overlays and attachments around
// one task collection.
type Orchestrator struct {
	store       Store
	confirmer   confirm.Confirmer
	callTimeout time.Duration
	log         logrus.FieldLogger

	search  *debounce.Debouncer
	filters *filter.Composer
	modal   *modal.Coordinator
	files   *attachment.Manager
	users   *cache.Loader[[]models.User]

	mu         sync.Mutex
	baseCtx    context.Context
	cancel     context.CancelFunc
	tasks      []models.Task
	userList   []models.User
	searchText string
	scope      Scope
	banner     string
	issued     uint64
	settled    uint64
	inFlight   int
	subs       []func(Snapshot)

	notifyMu sync.Mutex
}

// New wires an Orchestrator. Call Start before use and Close when done.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		store:       opts.Store,
		confirmer:   opts.Confirmer,
		callTimeout: opts.CallTimeout,
		log:         opts.Log,
	}
	if o.confirmer == nil {
		o.confirmer = confirm.Never
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	o.log = logger.Component(o.log, "tasklist")
	o.baseCtx, o.cancel = context.WithCancel(context.Background())

	o.filters = filter.New(func(models.FilterCriteria) {
		_ = o.Refresh(o.context())
	})
	o.search = debounce.New(opts.SearchDebounce, func(term string) {
		o.filters.SetSearchTerm(term)
	})
	o.modal = modal.New(o.store, func(ctx context.Context) { _ = o.Refresh(ctx) }, o.log)
	o.modal.Subscribe(func(prev, next modal.State) { o.notify() })
	o.files = attachment.New(attachment.Options{
		Store:     o.store,
		Refresh:   o.modal.RefreshDetail,
		Confirmer: o.confirmer,
		Alerter:   opts.Alerter,
		Sink:      opts.Sink,
		Log:       o.log,
	})
	o.users = cache.NewLoader(opts.UsersTTL, func(ctx context.Context) ([]models.User, error) {
		return o.store.ListUsers(ctx)
	})
	return o
}

// Start binds the orchestrator to ctx and loads the list and the user
// directory. The list error, if any, is returned and shown in the banner.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.cancel()
	o.baseCtx, o.cancel = context.WithCancel(ctx)
	o.mu.Unlock()

	if err := o.LoadUsers(ctx); err != nil {
		o.log.WithError(err).Warn("failed to load users")
	}
	return o.Refresh(ctx)
}

// Close drops a pending search and detaches from the Start context.
func (o *Orchestrator) Close() {
	o.search.Stop()
	o.mu.Lock()
	o.cancel()
	o.mu.Unlock()
}

func (o *Orchestrator) context() context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.baseCtx
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.callTimeout)
}

// Subscribe registers fn to receive a Snapshot after every state change.
// fn may call Snapshot but must not start fetches or open overlays.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs = append(o.subs, fn)
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	st := o.modal.State()
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Tasks:      append([]models.Task(nil), o.tasks...),
		Users:      append([]models.User(nil), o.userList...),
		SearchText: o.searchText,
		Criteria:   o.filters.Criteria(),
		Scope:      o.scope,
		Loading:    o.inFlight > 0,
		Banner:     o.banner,
		Modal:      st,
	}
}

func (o *Orchestrator) notify() {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	subs := append([]func(Snapshot){}, o.subs...)
	o.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	snap := o.Snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}

func (o *Orchestrator) setBanner(msg string) {
	o.mu.Lock()
	o.banner = msg
	o.mu.Unlock()
	o.notify()
}

// Refresh fetches the collection for the current scope and filters and
// replaces the local copy. On failure the previous collection stays and the
// banner shows the error. A response is dropped when a fetch issued later
// has already settled, whether it succeeded or failed.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	o.issued++
	ticket := o.issued
	o.inFlight++
	scope := o.scope
	o.mu.Unlock()
	criteria := o.filters.Criteria()
	o.notify()

	callCtx, cancel := o.withTimeout(ctx)
	var (
		tasks []models.Task
		err   error
	)
	if scope == ScopeMine {
		tasks, err = o.store.ListMyTasks(callCtx)
	} else {
		tasks, err = o.store.ListTasks(callCtx, criteria)
	}
	cancel()

	entry := o.log.WithFields(logrus.Fields{"ticket": ticket, "scope": scope.String()})
	o.mu.Lock()
	o.inFlight--
	switch {
	case ticket < o.settled:
		entry.WithField("settled", o.settled).Debug("discarding stale response")
	case err != nil:
		o.settled = ticket
		o.banner = taskstore.Message(err)
		entry.WithError(err).Warn("failed to fetch tasks")
	default:
		o.tasks = tasks
		o.settled = ticket
		o.banner = ""
		entry.WithField("count", len(tasks)).Debug("tasks replaced")
	}
	o.mu.Unlock()
	o.notify()
	return err
}

// LoadUsers fetches the user directory unless a fresh copy is cached.
func (o *Orchestrator) LoadUsers(ctx context.Context) error {
	callCtx, cancel := o.withTimeout(ctx)
	defer cancel()
	users, err := o.users.Get(callCtx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.userList = users
	o.mu.Unlock()
	o.notify()
	return nil
}

// DismissBanner clears the error banner.
func (o *Orchestrator) DismissBanner() { o.setBanner("") }

// Search records raw search input. The list is refetched once the input has
// been quiet for the debounce window.
func (o *Orchestrator) Search(text string) {
	o.mu.Lock()
	o.searchText = text
	o.mu.Unlock()
	o.search.Push(text)
	o.notify()
}

// FlushSearch applies pending search input immediately.
func (o *Orchestrator) FlushSearch() { o.search.Flush() }

func (o *Orchestrator) SetStatus(s models.TaskStatus) { o.filters.SetStatus(s) }

func (o *Orchestrator) SetPriority(p models.TaskPriority) { o.filters.SetPriority(p) }

func (o *Orchestrator) SetAssignee(id int64) { o.filters.SetAssignee(id) }

// ClearFilters empties the search input and every filter and refetches once.
func (o *Orchestrator) ClearFilters() {
	o.search.Cancel()
	o.mu.Lock()
	o.searchText = ""
	o.mu.Unlock()
	o.filters.Clear()
}

// SetScope switches between all tasks and the user's own.
func (o *Orchestrator) SetScope(ctx context.Context, s Scope) error {
	o.mu.Lock()
	changed := o.scope != s
	o.scope = s
	o.mu.Unlock()
	if !changed {
		return nil
	}
	return o.Refresh(ctx)
}

// Delete removes task id after confirmation and refetches the list. A
// declined confirmation returns confirm.ErrCancelled without any call.
func (o *Orchestrator) Delete(ctx context.Context, id int64) error {
	if err := confirm.Require(ctx, o.confirmer, "Are you sure you want to delete this task?"); err != nil {
		return err
	}

	callCtx, cancel := o.withTimeout(ctx)
	err := o.store.DeleteTask(callCtx, id)
	cancel()
	if err != nil {
		o.log.WithError(err).WithField("task_id", id).Warn("failed to delete task")
		o.setBanner(taskstore.Message(err))
		return err
	}
	o.log.WithField("task_id", id).Info("task deleted")

	if st := o.modal.State(); st.Task != nil && st.Task.ID == id {
		o.modal.Dismiss()
	}
	_ = o.Refresh(ctx)
	return nil
}

// DeleteViewed deletes the task whose detail is open.
func (o *Orchestrator) DeleteViewed(ctx context.Context) error {
	task, err := o.viewed()
	if err != nil {
		return err
	}
	return o.Delete(ctx, task.ID)
}

// View opens the detail of task and loads its latest version.
func (o *Orchestrator) View(ctx context.Context, task models.Task) error {
	callCtx, cancel := o.withTimeout(ctx)
	defer cancel()
	if err := o.modal.View(callCtx, task); err != nil {
		o.setBanner(taskstore.Message(err))
		return err
	}
	return nil
}

// Edit opens the edit form for task, replacing an open detail.
func (o *Orchestrator) Edit(task models.Task) { o.modal.Edit(task) }

// Create opens an empty edit form.
func (o *Orchestrator) Create() { o.modal.Create() }

// Cancel closes the edit form.
func (o *Orchestrator) Cancel() { o.modal.Cancel() }

// CloseView closes the detail and refetches the list.
func (o *Orchestrator) CloseView(ctx context.Context) { o.modal.CloseView(ctx) }

// Save submits the edit form. On success the form is closed and the list
// refetched before Save returns; on failure the form stays open.
func (o *Orchestrator) Save(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	task, err := o.modal.Save(ctx, draft)
	if err != nil {
		o.setBanner(taskstore.Message(err))
		return task, err
	}
	return task, nil
}

// Modal returns the open overlay.
func (o *Orchestrator) Modal() modal.State { return o.modal.State() }

func (o *Orchestrator) viewed() (models.Task, error) {
	st := o.modal.State()
	if st.Kind != modal.Viewing || st.Task == nil {
		return models.Task{}, ErrNoDetail
	}
	return *st.Task, nil
}

func (o *Orchestrator) viewedFile(fileID int64) (models.Attachment, error) {
	task, err := o.viewed()
	if err != nil {
		return models.Attachment{}, err
	}
	att, ok := task.FileByID(fileID)
	if !ok {
		return models.Attachment{}, fmt.Errorf("task %d has no file %d", task.ID, fileID)
	}
	return att, nil
}

// Upload attaches files to the open task, one after another.
func (o *Orchestrator) Upload(ctx context.Context, files []taskstore.Upload) ([]attachment.UploadResult, error) {
	task, err := o.viewed()
	if err != nil {
		return nil, err
	}
	return o.files.Upload(ctx, task.ID, files), nil
}

// Download saves a file of the open task and returns its local path.
func (o *Orchestrator) Download(ctx context.Context, fileID int64) (string, error) {
	att, err := o.viewedFile(fileID)
	if err != nil {
		return "", err
	}
	return o.files.Download(ctx, att)
}

// DeleteFile removes a file of the open task after confirmation.
func (o *Orchestrator) DeleteFile(ctx context.Context, fileID int64) error {
	att, err := o.viewedFile(fileID)
	if err != nil {
		return err
	}
	return o.files.Delete(ctx, att)
}

// RemoteChanged reacts to a change made elsewhere: the list is refetched,
// and so is the detail when it shows the changed task.
func (o *Orchestrator) RemoteChanged(ctx context.Context, taskID int64) {
	if task, err := o.viewed(); err == nil && task.ID == taskID {
		if err := o.modal.RefreshDetail(ctx); err != nil && !taskstore.IsNotFound(err) {
			o.log.WithError(err).Warn("detail refresh after remote change failed")
		}
	}
	_ = o.Refresh(ctx)
}
