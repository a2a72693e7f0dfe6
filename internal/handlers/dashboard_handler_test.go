package handlers_test

import (
	"net/http"
	"testing"

	"taskdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	srv, _, api := newAPI(t)
	bob := srv.CreateUser(t, "bob@example.com", "secret1", "Bob", "Brown")

	for i := 0; i < 6; i++ {
		createTask(t, api, draft("todo", models.StatusTodo, models.PriorityLow, nil))
	}
	createTask(t, api, draft("bob doing", models.StatusInProgress, models.PriorityUrgent, &bob.ID))

	resp := api.do(http.MethodGet, "/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[models.DashboardStats](t, resp)
	require.Equal(t, int64(7), stats.TotalTasks)
	require.Equal(t, int64(6), stats.TasksByStatus["TODO"])
	require.Equal(t, int64(1), stats.TasksByStatus["IN_PROGRESS"])
	require.Equal(t, int64(0), stats.TasksByStatus["DONE"])
	require.Equal(t, int64(0), stats.TasksByPriority["HIGH"])
	require.Equal(t, int64(1), stats.TasksByPriority["URGENT"])
	require.Len(t, stats.RecentTasks, 5)
	require.Equal(t, "bob doing", stats.RecentTasks[0].Title)

	resp = api.do(http.MethodGet, "/dashboard/stats?assignee="+jsonNumber(bob.ID), nil)
	stats = decode[models.DashboardStats](t, resp)
	require.Equal(t, int64(1), stats.TotalTasks)
	require.Len(t, stats.RecentTasks, 1)
}
