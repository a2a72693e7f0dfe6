package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"taskdesk/internal/attachment"
	"taskdesk/internal/realtime"
	"taskdesk/internal/tasklist"
	"taskdesk/internal/tui"
	"taskdesk/internal/watch"

	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			account, err := a.session.Account()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Client.Watch = live
			}

			// the screen belongs to the UI; logs go to a file next to the session
			if err := os.MkdirAll(a.cfg.Client.StateDir, 0o700); err == nil {
				f, err := os.OpenFile(filepath.Join(a.cfg.Client.StateDir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err == nil {
					a.log.SetOutput(f)
					defer f.Close()
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			bridge := tui.NewBridge()
			o := tasklist.New(tasklist.Options{
				Store:          a.client,
				Confirmer:      bridge,
				Alerter:        bridge,
				Sink:           attachment.DirSink{Dir: a.cfg.Client.DownloadDir},
				SearchDebounce: a.cfg.Client.SearchDebounce,
				UsersTTL:       a.cfg.Client.UsersTTL,
				CallTimeout:    a.cfg.Client.Timeout,
				Log:            a.log,
			})
			defer o.Close()

			if a.cfg.Client.Watch {
				w, err := watch.New(a.client.BaseURL(), a.session, func(evt realtime.Event) {
					o.RemoteChanged(ctx, evt.TaskID)
				}, a.log)
				if err != nil {
					return err
				}
				go func() {
					if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.log.WithError(err).Warn("live updates stopped")
					}
				}()
			}

			return tui.Run(ctx, o, bridge, a.theme, account)
		},
	}
	cmd.Flags().BoolVarP(&live, "watch", "w", false, "refresh when tasks change on the server (default client.watch)")
	return cmd
}
