package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"

	"taskdesk/internal/models"
)

// Upload is one file queued for upload. Open is called only when the upload
// starts, so a batch holds at most one file open at a time.
// The form is buffered in memory; the server caps files at a few MiB.
type Upload struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// BytesUpload wraps in-memory content.
func BytesUpload(name string, content []byte) Upload {
	return Upload{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// FileUpload reads from a local path. The path is checked only when the
// upload opens it, so a bad path fails that upload alone.
func FileUpload(path string) Upload {
	return Upload{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			info, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, err
			}
			if !info.Mode().IsRegular() {
				f.Close()
				return nil, fmt.Errorf("%s is not a regular file", path)
			}
			return f, nil
		},
	}
}

// Download is a streamed attachment body. The caller must Close it.
type Download struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	// Size is -1 when the server did not send a length
	Size int64
}

func (d *Download) Close() error { return d.Body.Close() }

// UploadFile sends u as a multipart form together with the owning task id.
func (c *Client) UploadFile(ctx context.Context, taskID int64, u Upload) (models.Attachment, error) {
	const op = "upload file"
	var att models.Attachment

	src, err := u.Open()
	if err != nil {
		return att, fmt.Errorf("%s: failed to open %s: %w", op, u.Name, err)
	}
	defer src.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeUploadForm(mw, taskID, u, src); err != nil {
		return att, fmt.Errorf("%s: failed to read %s: %w", op, u.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/files/upload", nil), &body)
	if err != nil {
		return att, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(op, req)
	if err != nil {
		return att, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&att); err != nil {
		return att, &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return att, nil
}

func writeUploadForm(mw *multipart.Writer, taskID int64, u Upload, src io.Reader) error {
	contentType := u.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(u.Name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": u.Name,
	}))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := mw.WriteField("taskId", strconv.FormatInt(taskID, 10)); err != nil {
		return err
	}
	return mw.Close()
}

// DownloadFile opens the binary content of attachment id. The file name
// comes from Content-Disposition.
func (c *Client) DownloadFile(ctx context.Context, id int64) (*Download, error) {
	const op = "download file"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(fmt.Sprintf("/files/%d", id), nil), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	resp, err := c.send(op, req)
	if err != nil {
		return nil, err
	}

	d := &Download{
		Body:        resp.Body,
		FileName:    fmt.Sprintf("file-%d", id),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := filepath.Base(params["filename"]); name != "" && name != "." && name != "/" {
			d.FileName = name
		}
	}
	return d, nil
}

// DeleteFile removes attachment id. Callers confirm first.
func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete file", http.MethodDelete, fmt.Sprintf("/files/%d", id), nil, nil, nil)
}
