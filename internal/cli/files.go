package cli

import (
	"fmt"

	"taskdesk/internal/attachment"
	"taskdesk/internal/models"

	"github.com/spf13/cobra"
)

// taskFile resolves a file id against its task so prompts and downloads
// can use the original file name.
func (a *app) taskFile(cmd *cobra.Command, taskArg, fileArg string) (models.Attachment, error) {
	taskID, err := parseID(taskArg, "task")
	if err != nil {
		return models.Attachment{}, err
	}
	fileID, err := parseID(fileArg, "file")
	if err != nil {
		return models.Attachment{}, err
	}
	task, err := a.client.GetTask(cmd.Context(), taskID)
	if err != nil {
		return models.Attachment{}, fail(err)
	}
	att, ok := task.FileByID(fileID)
	if !ok {
		return models.Attachment{}, fmt.Errorf("task #%d has no file %d", taskID, fileID)
	}
	return att, nil
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <task-id> <file>...",
		Short: "Attach files to a task",
		Long: `Attach files to a task. Files are sent one at a time in the order given;
a file that fails is reported and the rest are still sent.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			uploads := attachment.UploadsFromPaths(args[1:])
			results := a.attachments("").Upload(cmd.Context(), taskID, uploads)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					continue
				}
				fmt.Fprintf(a.out, "Uploaded %s (file %d)\n", r.Attachment.OriginalFileName, r.Attachment.ID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(results))
			}
			return nil
		},
	}
}

func newDownloadCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <task-id> <file-id>",
		Short: "Save an attachment under its original name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			att, err := a.taskFile(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			path, err := a.attachments(dir).Download(cmd.Context(), att)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(a.out, "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "destination directory (default client.download_dir)")
	return cmd
}

func newRmFileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-file <task-id> <file-id>",
		Short: "Delete an attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			att, err := a.taskFile(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.attachments("").Delete(cmd.Context(), att); err != nil {
				return fail(err)
			}
			fmt.Fprintf(a.out, "Deleted %s\n", att.OriginalFileName)
			return nil
		},
	}
}
