package watch

import (
	"context"
	"net/url"
	"testing"
	"time"

	"taskdesk/internal/realtime"
	"taskdesk/internal/taskstore"
	"taskdesk/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestWatcherReceivesPublishedEvents(t *testing.T) {
	srv := testutil.NewServer(t)
	alice := srv.CreateUser(t, "alice@example.com", "secret1", "Alice", "Adams")
	base, err := url.Parse(srv.APIURL())
	require.NoError(t, err)

	events := make(chan realtime.Event, 4)
	w, err := New(base, taskstore.StaticToken(srv.Token(t, alice)), func(e realtime.Event) { events <- e }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	hub := srv.Handler.Hub()
	require.Eventually(t, func() bool { return hub.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(realtime.Event{Type: realtime.EventTaskUpdated, TaskID: 5, UserID: alice.ID})
	select {
	case e := <-events:
		require.Equal(t, realtime.EventTaskUpdated, e.Type)
		require.Equal(t, int64(5), e.TaskID)
		require.Equal(t, 1, e.Version)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherRejectedSession(t *testing.T) {
	srv := testutil.NewServer(t)
	base, err := url.Parse(srv.APIURL())
	require.NoError(t, err)

	w, err := New(base, taskstore.StaticToken("bogus"), func(realtime.Event) {}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorIs(t, w.Run(ctx), errUnauthorized)
}

func TestNewRejectsUnknownScheme(t *testing.T) {
	_, err := New(&url.URL{Scheme: "ftp", Host: "x"}, taskstore.StaticToken(""), nil, nil)
	require.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	base, _ := url.Parse("https://tasks.example.com/api/")
	w, err := New(base, taskstore.StaticToken(""), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "wss://tasks.example.com/api/ws", w.url)
}
