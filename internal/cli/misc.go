package cli

import (
	"fmt"
	"text/tabwriter"

	"taskdesk/internal/models"
	"taskdesk/internal/present"

	"github.com/spf13/cobra"
)

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users tasks can be assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			users, err := a.client.ListUsers(cmd.Context())
			if err != nil {
				return fail(err)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
			}
			return tw.Flush()
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var assignee int64
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status and priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			stats, err := a.client.DashboardStats(cmd.Context(), assignee)
			if err != nil {
				return fail(err)
			}

			fmt.Fprintf(a.out, "Total tasks: %d\n\n", stats.TotalTasks)
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, s := range models.AllStatuses {
				fmt.Fprintf(tw, "%s\t%d\n", present.StatusLabel(s), stats.TasksByStatus[string(s)])
			}
			fmt.Fprintln(tw)
			for _, p := range models.AllPriorities {
				fmt.Fprintf(tw, "%s\t%d\n", present.PriorityLabel(p), stats.TasksByPriority[string(p)])
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(stats.RecentTasks) > 0 {
				fmt.Fprintln(a.out, "\nRecent:")
				return printTasks(a.out, stats.RecentTasks)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "only count tasks assigned to this user id")
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				var err error
				switch args[0] {
				case "dark":
					err = a.theme.SetDark(true)
				case "light":
					err = a.theme.SetDark(false)
				case "toggle":
					_, err = a.theme.Toggle()
				default:
					return fmt.Errorf("unknown theme %q: want dark, light or toggle", args[0])
				}
				if err != nil {
					return err
				}
			}
			name := "light"
			if a.theme.Dark() {
				name = "dark"
			}
			fmt.Fprintf(a.out, "Theme: %s\n", name)
			return nil
		},
	}
}
