package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"taskdesk/internal/models"
	"taskdesk/internal/present"

	"github.com/charmbracelet/lipgloss"
)

const titleWidth = 40

var headingStyle = lipgloss.NewStyle().Bold(true)

func printTasks(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tDUE\tFILES")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			t.ID,
			present.Truncate(t.Title, titleWidth),
			present.StatusLabel(t.Status),
			present.PriorityLabel(t.Priority),
			present.Assignee(t),
			present.DueDate(t),
			len(t.Files),
		)
	}
	return tw.Flush()
}

func printTask(w io.Writer, t models.Task, dark bool) error {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)))
	fmt.Fprintf(w, "%s  %s\n", present.StatusBadge(t.Status, dark), present.PriorityBadge(t.Priority, dark))
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n\n", t.Description)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Assignee:\t%s\n", present.Assignee(t))
	fmt.Fprintf(tw, "Created by:\t%s\n", t.CreatorName())
	fmt.Fprintf(tw, "Due:\t%s\n", present.DueDate(t))
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(t.Files) == 0 {
		_, err := fmt.Fprintln(w, "\nNo attachments")
		return err
	}
	fmt.Fprintln(w, "\nAttachments:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range t.Files {
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", f.ID, f.OriginalFileName, present.FileSize(f.FileSize))
	}
	return tw.Flush()
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
