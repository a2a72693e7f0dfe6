// Package watch subscribes to the server's task change events.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdesk/internal/logger"
	"taskdesk/internal/realtime"
	"taskdesk/internal/taskstore"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
	pongWait   = 70 * time.Second
)

// Watcher keeps a websocket open to /ws and hands every event to a callback.
type Watcher struct {
	url     string
	tokens  taskstore.TokenSource
	dialer  *websocket.Dialer
	log     logrus.FieldLogger
	onEvent func(realtime.Event)
}

// New derives the websocket URL from the API base URL (http→ws, https→wss).
func New(baseURL *url.URL, tokens taskstore.TokenSource, onEvent func(realtime.Event), log logrus.FieldLogger) (*Watcher, error) {
	u := *baseURL
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{
		url:     u.String(),
		tokens:  tokens,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:     logger.Component(log, "watch"),
		onEvent: onEvent,
	}, nil
}

// Run connects and delivers events until ctx is done, reconnecting with
// exponential backoff. A 401 on connect ends Run with the error.
func (w *Watcher) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		connected, err := w.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errUnauthorized) {
			return err
		}
		if connected {
			backoff = minBackoff
		}
		w.log.WithError(err).WithField("retry_in", backoff).Debug("event stream lost")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

var errUnauthorized = errors.New("event stream rejected the session")

// session runs one connection. connected reports whether the handshake succeeded.
func (w *Watcher) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if token := w.tokens.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := w.dialer.DialContext(ctx, w.url, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return false, errUnauthorized
		}
		return false, err
	}
	defer conn.Close()
	w.log.Debug("event stream connected")

	// unblock ReadMessage when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var evt realtime.Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			w.log.WithError(err).Warn("ignoring malformed event")
			continue
		}
		w.onEvent(evt)
	}
}
