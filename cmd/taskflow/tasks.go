package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/model"
	"taskflow/internal/task"
)

type draftFlags struct {
	title, description, due, priority, image string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&f.image, "image", "", "Path to an image to attach")
}

// apply overwrites d with every flag the user set.
func (f *draftFlags) apply(cmd *cobra.Command, d *task.Draft, maxImage int) error {
	set := cmd.Flags().Changed
	if set("title") {
		d.Title = f.title
	}
	if set("description") {
		d.Description = f.description
	}
	if set("due") {
		d.DueDate = f.due
	}
	if set("priority") {
		d.Priority = f.priority
	}
	if set("image") {
		img, err := readImageFile(f.image, maxImage)
		if err != nil {
			return err
		}
		d.Image = img
	}
	return nil
}

func readImageFile(path string, limit int) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()
	img, err := task.EncodeImage(fh, mime.TypeByExtension(filepath.Ext(path)), limit)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func (c *cli) addCmd() *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			var d task.Draft
			if err := f.apply(cmd, &d, app.Service.Validator().MaxImageBytes()); err != nil {
				return err
			}
			t, err := app.Service.AddTask(cmd.Context(), d)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Task created: %s\n", t.ID)
			fmt.Fprintf(out, "  Title: %s\n", t.Title)
			fmt.Fprintf(out, "  Due: %s (%s)\n", dueDay(t), t.Priority)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var f draftFlags
	var removeImage bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long:  `Only the flags given are changed. Completion and creation time are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			cur, ok := app.Service.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", task.ErrNotFound, args[0])
			}
			d := task.DraftFrom(cur)
			// Keep the stored instant; the date-only form is for the HTML input.
			d.DueDate = cur.DueDate
			if removeImage {
				d.Image = ""
			}
			if err := f.apply(cmd, &d, app.Service.Validator().MaxImageBytes()); err != nil {
				return err
			}
			t, err := app.Service.EditTask(cmd.Context(), cur.ID, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task updated: %s\n", t.ID)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&removeImage, "remove-image", false, "Drop the attached image")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := model.ParseFilter(filter)
			if err != nil {
				return fmt.Errorf("%w: %q (want all, active or completed)", err, filter)
			}
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			tasks := app.Service.List(opt)
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			now := app.Service.Now()
			for _, t := range tasks {
				printTask(out, t, now)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, active or completed")
	return cmd
}

func printTask(w io.Writer, t model.Task, now time.Time) {
	mark := "○"
	if t.Completed {
		mark = "✓"
	}
	overdue := ""
	if t.IsOverdue(now) {
		overdue = " (overdue)"
	}
	fmt.Fprintf(w, "%s [%s] %s  due %s%s  %s\n", mark, t.ID, t.Title, dueDay(t), overdue, t.Priority)
	if t.Description != "" {
		fmt.Fprintf(w, "    %s\n", t.Description)
	}
}

func dueDay(t model.Task) string {
	due, err := t.Due()
	if err != nil {
		return t.DueDate
	}
	return due.UTC().Format("2006-01-02")
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			t, err := app.Service.ToggleComplete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			state := "active"
			if t.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", t.ID, state)
			return nil
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			if _, ok := app.Service.Get(args[0]); !ok {
				return fmt.Errorf("%w: %s", task.ErrNotFound, args[0])
			}
			if err := app.Service.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task deleted: %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			s := app.Service.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nActive: %d\nCompleted: %d\nOverdue: %d\n",
				s.Total, s.Active, s.Completed, s.Overdue)
			return nil
		},
	}
}

func (c *cli) exportICSCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-ics <id>",
		Short: "Write a task as an iCalendar event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd)
			if err != nil {
				return err
			}
			t, ok := app.Service.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", task.ErrNotFound, args[0])
			}
			ics, err := task.BuildTaskCalendarICS(t, app.Service.Now())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), ics)
				return err
			}
			if err := os.WriteFile(out, []byte(ics), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// errorsAsValidation unwraps a task validation error for exit messages.
func errorsAsValidation(err error) (*task.ValidationError, bool) {
	var verr *task.ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
