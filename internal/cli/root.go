// Package cli implements the taskdesk command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the taskdesk command tree.
func NewRootCmd() *cobra.Command {
	a := newApp()

	root := &cobra.Command{
		Use:   "taskdesk",
		Short: "Track team tasks from the terminal",
		Long: `taskdesk talks to a task server: browse, search and filter the team's
tasks, create and edit them, and manage their attachments.

Run 'taskdesk tui' for the interactive view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/taskdesk/config.yaml)")
	flags.String("base-url", "", "task server API root, e.g. http://localhost:8080/api")
	flags.String("state-dir", "", "directory holding the saved session")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVarP(&a.assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("client.base_url", flags.Lookup("base-url"))
	_ = a.v.BindPFlag("client.state_dir", flags.Lookup("state-dir"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newListCmd(a),
		newMineCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newUsersCmd(a),
		newUploadCmd(a),
		newDownloadCmd(a),
		newRmFileCmd(a),
		newStatsCmd(a),
		newThemeCmd(a),
		newTUICmd(a),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
