// Package attachment uploads, downloads and deletes task attachments. Every
// successful mutation is followed by a refresh of the owning task's detail.
package attachment

import (
	"context"
	"fmt"

	"taskdesk/internal/confirm"
	"taskdesk/internal/logger"
	"taskdesk/internal/models"
	"taskdesk/internal/taskstore"

	"github.com/sirupsen/logrus"
)

// Store is the part of the task store attachments need.
type Store interface {
	UploadFile(ctx context.Context, taskID int64, u taskstore.Upload) (models.Attachment, error)
	DownloadFile(ctx context.Context, id int64) (*taskstore.Download, error)
	DeleteFile(ctx context.Context, id int64) error
}

// Alerter shows a file operation failure and returns once the user has
// acknowledged it.
type Alerter interface {
	Alert(fileName string, err error)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(fileName string, err error)

func (f AlertFunc) Alert(fileName string, err error) { f(fileName, err) }

// UploadResult is the outcome of one file of a batch.
type UploadResult struct {
	Name       string
	Attachment models.Attachment
	Err        error
}

// Options configures a Manager.
type Options struct {
	Store Store
	// Refresh re-reads the owning task's detail
	Refresh   func(ctx context.Context) error
	Confirmer confirm.Confirmer
	Alerter   Alerter
	Sink      Sink
	Log       logrus.FieldLogger
}

// Manager runs attachment operations.
type Manager struct {
	store     Store
	refresh   func(ctx context.Context) error
	confirmer confirm.Confirmer
	alerter   Alerter
	sink      Sink
	log       logrus.FieldLogger
}

func New(opts Options) *Manager {
	m := &Manager{
		store:     opts.Store,
		refresh:   opts.Refresh,
		confirmer: opts.Confirmer,
		alerter:   opts.Alerter,
		sink:      opts.Sink,
		log:       opts.Log,
	}
	if m.refresh == nil {
		m.refresh = func(context.Context) error { return nil }
	}
	if m.confirmer == nil {
		m.confirmer = confirm.Never
	}
	if m.alerter == nil {
		m.alerter = AlertFunc(func(string, error) {})
	}
	if m.sink == nil {
		m.sink = DirSink{Dir: "."}
	}
	if m.log == nil {
		m.log = logger.Discard()
	}
	m.log = logger.Component(m.log, "attachment")
	return m
}

func (m *Manager) afterMutation(ctx context.Context) {
	if err := m.refresh(ctx); err != nil {
		m.log.WithError(err).Warn("detail refresh failed")
	}
}

// Upload sends files one after another in the given order. A failure is
// alerted for that file alone and the rest of the batch still runs. The
// detail is refreshed after each successful upload.
func (m *Manager) Upload(ctx context.Context, taskID int64, files []taskstore.Upload) []UploadResult {
	results := make([]UploadResult, 0, len(files))
	for i, f := range files {
		entry := m.log.WithFields(logrus.Fields{"task_id": taskID, "file": f.Name, "index": i})
		att, err := m.store.UploadFile(ctx, taskID, f)
		results = append(results, UploadResult{Name: f.Name, Attachment: att, Err: err})
		if err != nil {
			entry.WithError(err).Warn("upload failed")
			m.alerter.Alert(f.Name, err)
			continue
		}
		entry.WithField("file_id", att.ID).Info("uploaded")
		m.afterMutation(ctx)
	}
	return results
}

// Download saves att under its original file name and returns the path.
// The response body is released before Download returns.
func (m *Manager) Download(ctx context.Context, att models.Attachment) (string, error) {
	path, err := m.download(ctx, att)
	if err != nil {
		m.log.WithError(err).WithField("file_id", att.ID).Warn("download failed")
		m.alerter.Alert(att.OriginalFileName, err)
		return "", err
	}
	m.log.WithFields(logrus.Fields{"file_id": att.ID, "path": path}).Info("downloaded")
	return path, nil
}

func (m *Manager) download(ctx context.Context, att models.Attachment) (string, error) {
	dl, err := m.store.DownloadFile(ctx, att.ID)
	if err != nil {
		return "", err
	}
	defer dl.Close()

	name := att.OriginalFileName
	if name == "" {
		name = dl.FileName
	}
	return m.sink.Save(name, dl.Body)
}

// Delete removes att after confirmation. A declined confirmation returns
// confirm.ErrCancelled and nothing is sent.
func (m *Manager) Delete(ctx context.Context, att models.Attachment) error {
	prompt := fmt.Sprintf("Delete file %q?", att.OriginalFileName)
	if err := confirm.Require(ctx, m.confirmer, prompt); err != nil {
		return err
	}
	if err := m.store.DeleteFile(ctx, att.ID); err != nil {
		m.log.WithError(err).WithField("file_id", att.ID).Warn("delete failed")
		m.alerter.Alert(att.OriginalFileName, err)
		return err
	}
	m.log.WithField("file_id", att.ID).Info("deleted")
	m.afterMutation(ctx)
	return nil
}

// UploadsFromPaths turns local paths into uploads, keeping their order.
// Paths are not checked here; a missing or unreadable file fails its own
// upload and is alerted while the rest of the batch still runs.
func UploadsFromPaths(paths []string) []taskstore.Upload {
	uploads := make([]taskstore.Upload, 0, len(paths))
	for _, p := range paths {
		uploads = append(uploads, taskstore.FileUpload(p))
	}
	return uploads
}
