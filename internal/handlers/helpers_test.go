package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"taskdesk/internal/models"
	"taskdesk/internal/testutil"

	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t     *testing.T
	srv   *testutil.Server
	token string
}

func newAPI(t *testing.T) (*testutil.Server, models.UserRecord, *apiClient) {
	t.Helper()
	srv := testutil.NewServer(t)
	alice := srv.CreateUser(t, "alice@example.com", "secret1", "Alice", "Adams")
	return srv, alice, &apiClient{t: t, srv: srv, token: srv.Token(t, alice)}
}

func (a *apiClient) as(u models.UserRecord) *apiClient {
	return &apiClient{t: a.t, srv: a.srv, token: a.srv.Token(a.t, u)}
}

func (a *apiClient) do(method, path string, body any) *http.Response {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.APIURL()+path, r)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *apiClient) upload(taskID int64, name string, content []byte) *http.Response {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(a.t, err)
	_, err = fw.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.WriteField("taskId", jsonNumber(taskID)))
	require.NoError(a.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.srv.APIURL()+"/files/upload", &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type errorBody struct {
	Error  string            `json:"error"`
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}
