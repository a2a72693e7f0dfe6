package cli

import (
	"fmt"

	"taskdesk/internal/confirm"
	"taskdesk/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newListCmd(a *app) *cobra.Command {
	var status, priority, search string
	var assignee int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the team's tasks",
		Long: `List the team's tasks, newest first. Filters combine: a task is shown
only when it matches every filter given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			criteria := models.FilterCriteria{Assignee: assignee, SearchTerm: search}
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				criteria.Status = s
			}
			if priority != "" {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				criteria.Priority = p
			}
			tasks, err := a.client.ListTasks(cmd.Context(), criteria)
			if err != nil {
				return fail(err)
			}
			return printTasks(a.out, tasks)
		},
	}
	f := cmd.Flags()
	f.StringVar(&status, "status", "", "only tasks in this status (TODO, IN_PROGRESS, DONE)")
	f.StringVar(&priority, "priority", "", "only tasks of this priority (LOW, MEDIUM, HIGH, URGENT)")
	f.Int64Var(&assignee, "assignee", 0, "only tasks assigned to this user id")
	f.StringVarP(&search, "search", "s", "", "only tasks whose title contains this text")
	return cmd
}

func newMineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List tasks assigned to or created by you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			tasks, err := a.client.ListMyTasks(cmd.Context())
			if err != nil {
				return fail(err)
			}
			return printTasks(a.out, tasks)
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			task, err := a.client.GetTask(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			return printTask(a.out, task, a.theme.Dark())
		},
	}
}

// draftFlags are the editable task fields shared by create and update.
type draftFlags struct {
	title, description string
	status, priority   string
	due                string
	assignee           int64
	unassign           bool
}

func (d *draftFlags) register(f *pflag.FlagSet) {
	f.StringVarP(&d.title, "title", "t", "", "task title")
	f.StringVarP(&d.description, "description", "d", "", "task description")
	f.StringVar(&d.status, "status", "", "TODO, IN_PROGRESS or DONE")
	f.StringVar(&d.priority, "priority", "", "LOW, MEDIUM, HIGH or URGENT")
	f.StringVar(&d.due, "due", "", `due date as YYYY-MM-DD, or "none" to clear it`)
	f.Int64Var(&d.assignee, "assignee", 0, "assign to this user id")
	f.BoolVar(&d.unassign, "unassign", false, "remove the assignee")
}

// apply copies every flag that was given onto draft.
func (d *draftFlags) apply(f *pflag.FlagSet, draft *models.TaskDraft) error {
	if f.Changed("title") {
		draft.Title = d.title
	}
	if f.Changed("description") {
		draft.Description = d.description
	}
	if f.Changed("status") {
		s, err := models.ParseStatus(d.status)
		if err != nil {
			return err
		}
		draft.Status = s
	}
	if f.Changed("priority") {
		p, err := models.ParsePriority(d.priority)
		if err != nil {
			return err
		}
		draft.Priority = p
	}
	if f.Changed("due") {
		if d.due == "none" || d.due == "" {
			draft.DueDate = nil
		} else {
			due, err := models.ParseDate(d.due)
			if err != nil {
				return err
			}
			draft.DueDate = &due
		}
	}
	switch {
	case d.unassign:
		draft.AssignedToID = nil
	case f.Changed("assignee"):
		id := d.assignee
		draft.AssignedToID = &id
	}
	return nil
}

func newCreateCmd(a *app) *cobra.Command {
	var d draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			draft := models.NewDraft()
			if err := d.apply(cmd.Flags(), &draft); err != nil {
				return err
			}
			task, err := a.client.CreateTask(cmd.Context(), draft)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(a.out, "Created task #%d\n", task.ID)
			return nil
		},
	}
	d.register(cmd.Flags())
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var d draftFlags
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change fields of a task",
		Long:  `Change fields of a task. Fields without a flag keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			current, err := a.client.GetTask(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			draft := models.DraftFromTask(current)
			if err := d.apply(cmd.Flags(), &draft); err != nil {
				return err
			}
			if _, err := a.client.UpdateTask(cmd.Context(), id, draft); err != nil {
				return fail(err)
			}
			fmt.Fprintf(a.out, "Updated task #%d\n", id)
			return nil
		},
	}
	d.register(cmd.Flags())
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			task, err := a.client.GetTask(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			prompt := fmt.Sprintf("Delete task #%d %q?", task.ID, task.Title)
			if err := confirm.Require(cmd.Context(), a.confirmer(), prompt); err != nil {
				return err
			}
			if err := a.client.DeleteTask(cmd.Context(), id); err != nil {
				return fail(err)
			}
			fmt.Fprintf(a.out, "Deleted task #%d\n", id)
			return nil
		},
	}
}
