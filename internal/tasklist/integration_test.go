package tasklist

import (
	"context"
	"sync"
	"testing"

	"taskdesk/internal/attachment"
	"taskdesk/internal/confirm"
	"taskdesk/internal/models"
	"taskdesk/internal/taskstore"
	"taskdesk/internal/testutil"

	"github.com/stretchr/testify/require"
)

func remoteOrchestrator(t *testing.T, opts Options) (*Orchestrator, *taskstore.Client) {
	t.Helper()
	srv := testutil.NewServer(t)
	alice := srv.CreateUser(t, "alice@example.com", "secret1", "Alice", "Adams")
	client, err := taskstore.New(taskstore.Options{
		BaseURL: srv.APIURL(),
		Tokens:  taskstore.StaticToken(srv.Token(t, alice)),
	})
	require.NoError(t, err)
	opts.Store = client
	o := New(opts)
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(o.Close)
	return o, client
}

func TestRemoteUploadBatchContinuesAfterFailure(t *testing.T) {
	var (
		mu     sync.Mutex
		alerts []string
	)
	o, client := remoteOrchestrator(t, Options{
		Alerter: attachment.AlertFunc(func(name string, err error) {
			mu.Lock()
			defer mu.Unlock()
			alerts = append(alerts, name)
		}),
	})
	ctx := context.Background()

	task, err := client.CreateTask(ctx, models.TaskDraft{Title: "with files", Status: models.StatusTodo, Priority: models.PriorityMedium})
	require.NoError(t, err)
	require.NoError(t, o.Refresh(ctx))
	require.NoError(t, o.View(ctx, task))

	results, err := o.Upload(ctx, []taskstore.Upload{
		taskstore.BytesUpload("first.txt", []byte("1")),
		taskstore.BytesUpload("empty.txt", nil),
		taskstore.BytesUpload("third.txt", []byte("3")),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
	require.Equal(t, []string{"empty.txt"}, alerts)

	detail := o.Modal().Task
	require.Len(t, detail.Files, 2)
	require.Equal(t, "first.txt", detail.Files[0].OriginalFileName)
	require.Equal(t, "third.txt", detail.Files[1].OriginalFileName)
}

func TestRemoteFilterAndDeleteFlow(t *testing.T) {
	o, client := remoteOrchestrator(t, Options{Confirmer: confirm.Always})
	ctx := context.Background()

	for _, d := range []models.TaskDraft{
		{Title: "Fix login", Status: models.StatusTodo, Priority: models.PriorityHigh},
		{Title: "Write docs", Status: models.StatusDone, Priority: models.PriorityLow},
	} {
		_, err := client.CreateTask(ctx, d)
		require.NoError(t, err)
	}
	require.NoError(t, o.Refresh(ctx))
	require.Len(t, o.Snapshot().Tasks, 2)

	o.SetStatus(models.StatusDone)
	o.Search("docs")
	o.FlushSearch()
	snap := o.Snapshot()
	require.Len(t, snap.Tasks, 1)
	require.Equal(t, "Write docs", snap.Tasks[0].Title)

	o.ClearFilters()
	require.Len(t, o.Snapshot().Tasks, 2)

	require.NoError(t, o.Delete(ctx, snap.Tasks[0].ID))
	remaining := o.Snapshot().Tasks
	require.Len(t, remaining, 1)
	require.Equal(t, "Fix login", remaining[0].Title)
}
