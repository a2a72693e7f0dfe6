package handlers_test

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"os"
	"testing"

	"taskdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func TestUploadDownloadDelete(t *testing.T) {
	srv, _, api := newAPI(t)
	task := createTask(t, api, draft("with files", models.StatusTodo, models.PriorityLow, nil))

	resp := api.upload(task.ID, "Report Final.PDF", []byte("%PDF-1.4 body"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	att := decode[models.Attachment](t, resp)
	require.Equal(t, task.ID, att.TaskID)
	require.Equal(t, "Report Final.PDF", att.OriginalFileName)
	require.Equal(t, int64(len("%PDF-1.4 body")), att.FileSize)
	require.NotEqual(t, att.OriginalFileName, att.FileName)
	require.Regexp(t, `\.pdf$`, att.FileName)

	resp = api.do(http.MethodGet, "/tasks/"+jsonNumber(task.ID), nil)
	fetched := decode[models.Task](t, resp)
	require.Len(t, fetched.Files, 1)
	require.Equal(t, att.ID, fetched.Files[0].ID)

	resp = api.do(http.MethodGet, "/files/"+jsonNumber(att.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	require.NoError(t, err)
	require.Equal(t, "Report Final.PDF", params["filename"])
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.Equal([]byte("%PDF-1.4 body"), body))

	var rec models.AttachmentRecord
	require.NoError(t, srv.DB.First(&rec, att.ID).Error)

	resp = api.do(http.MethodDelete, "/files/"+jsonNumber(att.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err = os.Stat(rec.FilePath)
	require.True(t, os.IsNotExist(err))

	resp = api.do(http.MethodGet, "/files/"+jsonNumber(att.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpload_Rejections(t *testing.T) {
	_, _, api := newAPI(t)
	task := createTask(t, api, draft("target", models.StatusTodo, models.PriorityLow, nil))

	resp := api.upload(9999, "a.txt", []byte("x"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Task not found", decode[errorBody](t, resp).Error)

	resp = api.upload(task.ID, "empty.txt", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// the test server caps uploads at 1 MiB
	resp = api.upload(task.ID, "big.bin", bytes.Repeat([]byte("a"), 1<<20+10))
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = api.do(http.MethodPost, "/files/upload", map[string]string{"taskId": "1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
