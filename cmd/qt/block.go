package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quatroapp/quatro/internal/models"
)

func newBlockCmd() *cobra.Command {
	var (
		configPath string
		onTask     string
		text       string
	)

	cmd := &cobra.Command{
		Use:   "block <task-id>",
		Short: "Add a blocker to a task",
		Long:  "Adds an entry to the task's blocked-by list: another task via --task, or free text via --text.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (onTask == "") == (text == "") {
				return fmt.Errorf("exactly one of --task or --text is required")
			}
			return runBlock(cmd, configPath, args[0], onTask, text)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().StringVar(&onTask, "task", "", "blocking task ID")
	cmd.Flags().StringVar(&text, "text", "", "free-text blocker description")
	return cmd
}

func runBlock(cmd *cobra.Command, configPath, taskID, onTask, text string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	var t *models.Task
	if onTask != "" {
		t, err = st.AddTaskBlocker(taskID, onTask)
	} else {
		t, err = st.AddFreeTextBlocker(taskID, text)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Task %s now has %d blocker(s)\n", t.ID, len(t.Blockers))
	return nil
}

func newUnblockCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "unblock <task-id> <index>",
		Short: "Remove a blocker by its list index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %q", args[1])
			}
			return runUnblock(cmd, configPath, args[0], index)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runUnblock(cmd *cobra.Command, configPath, taskID string, index int) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.RemoveBlockerByIndex(taskID, index)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(t.Blockers) == 0 {
		fmt.Fprintf(out, "Task %s is unblocked\n", t.ID)
		return nil
	}
	var remaining []string
	for _, b := range t.Blockers {
		if b.Kind == models.BlockerKindTask {
			remaining = append(remaining, *b.BlockerTaskID)
		} else {
			remaining = append(remaining, b.Value)
		}
	}
	fmt.Fprintf(out, "Task %s still blocked by: %s\n", t.ID, strings.Join(remaining, ", "))
	return nil
}

func newSubtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's checklist",
	}

	cmd.AddCommand(newSubtaskAddCmd())
	cmd.AddCommand(newSubtaskToggleCmd())
	cmd.AddCommand(newSubtaskRemoveCmd())
	return cmd
}

func newSubtaskAddCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtaskAdd(cmd, configPath, args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runSubtaskAdd(cmd *cobra.Command, configPath, taskID, title string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.AddSubtask(taskID, title)
	if err != nil {
		return err
	}

	sub := t.Subtasks[len(t.Subtasks)-1]
	fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s to %s: %s\n", sub.ID, t.ID, sub.Title)
	return nil
}

func newSubtaskToggleCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "toggle <task-id> <subtask-id>",
		Short: "Toggle a subtask's completion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtaskToggle(cmd, configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runSubtaskToggle(cmd *cobra.Command, configPath, taskID, subtaskID string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.ToggleSubtask(taskID, subtaskID)
	if err != nil {
		return err
	}

	for _, sub := range t.Subtasks {
		if sub.ID == subtaskID {
			state := "open"
			if sub.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtask %s is now %s\n", sub.ID, state)
		}
	}
	return nil
}

func newSubtaskRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm <task-id> <subtask-id>",
		Short: "Remove a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtaskRemove(cmd, configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runSubtaskRemove(cmd *cobra.Command, configPath, taskID, subtaskID string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.RemoveSubtask(taskID, subtaskID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed subtask from %s (%d remaining)\n", t.ID, len(t.Subtasks))
	return nil
}
