package tasklist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskdesk/internal/confirm"
	"taskdesk/internal/modal"
	"taskdesk/internal/models"
	"taskdesk/internal/taskstore"

	"github.com/stretchr/testify/require"
)

type listCall struct {
	criteria models.FilterCriteria
	mine     bool
}

type fakeStore struct {
	mu      sync.Mutex
	tasks   []models.Task
	calls   []listCall
	deletes []int64
	listErr error
	// gates, when set, hold the n-th list call until the channel is closed
	gates map[int]chan struct{}
	// results, when set, override the n-th list call's result
	results map[int][]models.Task
	users   int
}

func (s *fakeStore) list(c listCall) ([]models.Task, error) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	n := len(s.calls)
	gate := s.gates[n]
	result, override := s.results[n]
	err := s.listErr
	tasks := append([]models.Task(nil), s.tasks...)
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if override {
		return result, nil
	}
	return tasks, nil
}

func (s *fakeStore) ListTasks(_ context.Context, c models.FilterCriteria) ([]models.Task, error) {
	return s.list(listCall{criteria: c})
}

func (s *fakeStore) ListMyTasks(context.Context) ([]models.Task, error) {
	return s.list(listCall{mine: true})
}

func (s *fakeStore) GetTask(_ context.Context, id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, &taskstore.RemoteError{StatusCode: 404, Message: "Task not found"}
}

func (s *fakeStore) CreateTask(_ context.Context, d models.TaskDraft) (models.Task, error) {
	if err := d.Validate(); err != nil {
		return models.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.Task{ID: int64(len(s.tasks) + 1), Title: d.Title, Status: d.Status, Priority: d.Priority}
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *fakeStore) UpdateTask(_ context.Context, id int64, d models.TaskDraft) (models.Task, error) {
	return models.Task{ID: id, Title: d.Title}, nil
}

func (s *fakeStore) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	return nil
}

func (s *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users++
	return []models.User{{ID: 1, Name: "Alice Adams"}}, nil
}

func (s *fakeStore) UploadFile(context.Context, int64, taskstore.Upload) (models.Attachment, error) {
	return models.Attachment{}, errors.New("not used")
}

func (s *fakeStore) DownloadFile(context.Context, int64) (*taskstore.Download, error) {
	return nil, errors.New("not used")
}

func (s *fakeStore) DeleteFile(context.Context, int64) error { return errors.New("not used") }

func (s *fakeStore) listCalls() []listCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]listCall(nil), s.calls...)
}

func seeded() *fakeStore {
	return &fakeStore{tasks: []models.Task{
		{ID: 1, Title: "one", Status: models.StatusTodo, Priority: models.PriorityLow},
		{ID: 2, Title: "two", Status: models.StatusDone, Priority: models.PriorityHigh},
	}}
}

func start(t *testing.T, store *fakeStore, opts Options) *Orchestrator {
	t.Helper()
	opts.Store = store
	o := New(opts)
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(o.Close)
	return o
}

func TestStartLoadsListAndUsers(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{UsersTTL: time.Minute})

	snap := o.Snapshot()
	require.Len(t, snap.Tasks, 2)
	require.Len(t, snap.Users, 1)
	require.False(t, snap.Loading)
	require.Equal(t, modal.Idle, snap.Modal.Kind)

	require.NoError(t, o.LoadUsers(context.Background()))
	require.Equal(t, 1, store.users)
}

func TestClearFiltersResetsQueryAndRefetches(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{SearchDebounce: time.Hour})

	o.SetStatus(models.StatusDone)
	o.Search("x")
	o.FlushSearch()
	require.Equal(t, models.FilterCriteria{Status: models.StatusDone, SearchTerm: "x"}, o.Snapshot().Criteria)

	before := len(store.listCalls())
	o.ClearFilters()
	calls := store.listCalls()
	require.Len(t, calls, before+1)
	require.True(t, calls[len(calls)-1].criteria.IsEmpty())

	snap := o.Snapshot()
	require.True(t, snap.Criteria.IsEmpty())
	require.Empty(t, snap.SearchText)
	require.Len(t, snap.Tasks, 2)
}

func TestSearchIsDebounced(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{SearchDebounce: 80 * time.Millisecond})
	initial := len(store.listCalls())

	o.Search("a")
	o.Search("ab")
	o.Search("abc")
	require.Equal(t, "abc", o.Snapshot().SearchText)

	require.Eventually(t, func() bool { return len(store.listCalls()) == initial+1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	calls := store.listCalls()
	require.Len(t, calls, initial+1)
	require.Equal(t, "abc", calls[initial].criteria.SearchTerm)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	store := seeded()
	declined := start(t, store, Options{Confirmer: confirm.Never})
	before := len(store.listCalls())

	require.ErrorIs(t, declined.Delete(context.Background(), 1), confirm.ErrCancelled)
	require.Empty(t, store.deletes)
	require.Len(t, store.listCalls(), before)
	require.Len(t, declined.Snapshot().Tasks, 2)

	accepted := start(t, store, Options{Confirmer: confirm.Always})
	before = len(store.listCalls())
	require.NoError(t, accepted.Delete(context.Background(), 1))
	require.Equal(t, []int64{1}, store.deletes)
	require.Len(t, store.listCalls(), before+1)
	require.Len(t, accepted.Snapshot().Tasks, 1)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{})

	slow := make(chan struct{})
	store.mu.Lock()
	n := len(store.calls)
	store.gates = map[int]chan struct{}{n + 1: slow}
	store.results = map[int][]models.Task{
		n + 1: {{ID: 9, Title: "stale"}},
		n + 2: {{ID: 10, Title: "fresh"}},
	}
	store.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = o.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool { return len(store.listCalls()) == n+1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, o.Refresh(context.Background()))
	require.Equal(t, "fresh", o.Snapshot().Tasks[0].Title)

	close(slow)
	<-done
	snap := o.Snapshot()
	require.Len(t, snap.Tasks, 1)
	require.Equal(t, "fresh", snap.Tasks[0].Title)
	require.False(t, snap.Loading)
}

func TestStaleResponseAfterNewerFailureIsDiscarded(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{})

	slow := make(chan struct{})
	store.mu.Lock()
	n := len(store.calls)
	store.gates = map[int]chan struct{}{n + 1: slow}
	store.results = map[int][]models.Task{n + 1: {{ID: 9, Title: "stale"}}}
	store.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = o.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool { return len(store.listCalls()) == n+1 }, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	store.listErr = &taskstore.RemoteError{StatusCode: 500, Message: "Failed to fetch tasks"}
	store.mu.Unlock()
	require.Error(t, o.Refresh(context.Background()))

	close(slow)
	<-done
	snap := o.Snapshot()
	require.Len(t, snap.Tasks, 2)
	require.Equal(t, "one", snap.Tasks[0].Title)
	require.Equal(t, "Failed to fetch tasks", snap.Banner)
	require.False(t, snap.Loading)
}

func TestFetchErrorKeepsPreviousCollection(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{})

	store.mu.Lock()
	store.listErr = &taskstore.RemoteError{StatusCode: 500, Message: "Failed to fetch tasks"}
	store.mu.Unlock()

	require.Error(t, o.Refresh(context.Background()))
	snap := o.Snapshot()
	require.Len(t, snap.Tasks, 2)
	require.Equal(t, "Failed to fetch tasks", snap.Banner)

	o.DismissBanner()
	require.Empty(t, o.Snapshot().Banner)
}

func TestScopeMineIgnoresFilters(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{})
	o.SetPriority(models.PriorityHigh)

	require.NoError(t, o.SetScope(context.Background(), ScopeMine))
	calls := store.listCalls()
	require.True(t, calls[len(calls)-1].mine)

	require.NoError(t, o.SetScope(context.Background(), ScopeMine))
	require.Len(t, store.listCalls(), len(calls))
}

func TestViewEditCancelAndSave(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{})
	ctx := context.Background()

	var kinds []modal.Kind
	o.Subscribe(func(s Snapshot) {
		if len(kinds) == 0 || kinds[len(kinds)-1] != s.Modal.Kind {
			kinds = append(kinds, s.Modal.Kind)
		}
	})

	tasks := o.Snapshot().Tasks
	require.NoError(t, o.View(ctx, tasks[0]))
	o.Edit(*o.Modal().Task)
	o.Cancel()
	require.Equal(t, []modal.Kind{modal.Viewing, modal.Editing, modal.Idle}, kinds)

	before := len(store.listCalls())
	o.Create()
	_, err := o.Save(ctx, models.TaskDraft{Status: models.StatusTodo, Priority: models.PriorityLow})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, modal.Editing, o.Modal().Kind)
	require.NotEmpty(t, o.Snapshot().Banner)

	saved, err := o.Save(ctx, models.TaskDraft{Title: "three", Status: models.StatusTodo, Priority: models.PriorityLow})
	require.NoError(t, err)
	require.Equal(t, modal.Idle, o.Modal().Kind)
	require.Len(t, store.listCalls(), before+1)
	require.Len(t, o.Snapshot().Tasks, 3)
	require.Equal(t, "three", saved.Title)
}

func TestCloseViewRefetches(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{})
	ctx := context.Background()

	require.NoError(t, o.View(ctx, o.Snapshot().Tasks[1]))
	before := len(store.listCalls())
	o.CloseView(ctx)
	require.Len(t, store.listCalls(), before+1)
	require.Equal(t, modal.Idle, o.Modal().Kind)
}

func TestDeleteViewedClosesDetail(t *testing.T) {
	store := seeded()
	o := start(t, store, Options{Confirmer: confirm.Always})
	ctx := context.Background()

	require.NoError(t, o.View(ctx, o.Snapshot().Tasks[0]))
	require.NoError(t, o.DeleteViewed(ctx))
	require.Equal(t, modal.Idle, o.Modal().Kind)
	require.Len(t, o.Snapshot().Tasks, 1)

	require.ErrorIs(t, o.DeleteViewed(ctx), ErrNoDetail)
}

func TestFileOpsNeedOpenDetail(t *testing.T) {
	o := start(t, seeded(), Options{})
	_, err := o.Upload(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDetail)
	_, err = o.Download(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoDetail)
}
