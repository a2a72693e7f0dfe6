package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"taskdesk/internal/attachment"
	"taskdesk/internal/config"
	"taskdesk/internal/confirm"
	"taskdesk/internal/logger"
	"taskdesk/internal/session"
	"taskdesk/internal/taskstore"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every command needs once the config is loaded.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log *logrus.Logger

	in  io.Reader
	out io.Writer
	err io.Writer

	session *session.Store
	theme   *session.Theme
	client  *taskstore.Client

	assumeYes bool
}

func newApp() *app {
	return &app{v: config.New(), in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// setup loads the config and opens the persisted session. It runs before
// every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	a.err = cmd.ErrOrStderr()

	if err := config.Read(a.v, a.v.GetString("config")); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewWithOutput(a.err, "taskdesk", cfg.Logging.Level, cfg.Logging.Format)

	persist := session.FilePersister{Dir: cfg.Client.StateDir}
	a.session = session.NewStore(persist)
	if err := a.session.Init(); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	a.theme = session.NewTheme(persist)
	if err := a.theme.Init(); err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	a.client, err = taskstore.New(taskstore.Options{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.Client.Timeout,
		Tokens:  a.session,
		OnUnauthorized: func() {
			if err := a.session.Logout(); err != nil {
				a.log.WithError(err).Warn("failed to clear rejected session")
			}
		},
		Log: a.log,
	})
	return err
}

func (a *app) teardown() error {
	if a.session == nil {
		return nil
	}
	return a.session.Close()
}

// requireLogin fails commands that need a session when there is none.
func (a *app) requireLogin() error {
	if !a.session.Authenticated() {
		return fmt.Errorf("%w: run 'taskdesk login' first", session.ErrNotLoggedIn)
	}
	return nil
}

func (a *app) confirmer() confirm.Confirmer {
	if a.assumeYes {
		return confirm.Always
	}
	return confirm.NewPrompter(a.in, a.err)
}

func (a *app) attachments(downloadDir string) *attachment.Manager {
	if downloadDir == "" {
		downloadDir = a.cfg.Client.DownloadDir
	}
	return attachment.New(attachment.Options{
		Store:     a.client,
		Confirmer: a.confirmer(),
		Alerter: attachment.AlertFunc(func(name string, err error) {
			fmt.Fprintf(a.err, "%s: %s\n", name, taskstore.Message(err))
		}),
		Sink: attachment.DirSink{Dir: filepath.Clean(downloadDir)},
		Log:  a.log,
	})
}

// fail turns a remote error into the message the user sees.
func fail(err error) error {
	if err == nil || errors.Is(err, confirm.ErrCancelled) || errors.Is(err, context.Canceled) {
		return err
	}
	return errors.New(taskstore.Message(err))
}
