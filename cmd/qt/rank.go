package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rank <task-id> <position>",
		Short: "Move a task in the manual rank order",
		Long:  "Moves a task to a zero-based position in the manual rank order. Manual rank beats score in the Now and Next sections.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("position must be a number: %q", args[1])
			}
			return runRank(cmd, configPath, args[0], to)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runRank(cmd *cobra.Command, configPath, taskID string, to int) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	snap := st.Snapshot()
	from := -1
	for i, id := range snap.Order {
		if id == taskID {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("task %s is not in the rank order", taskID)
	}

	if err := st.SetRelativePrioritization(taskID, from, to); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s from position %d to %d\n", taskID, from, to)
	return nil
}

func newSnoozeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "snooze <task-id> <until>",
		Short: "Hide a task until a time",
		Long:  "Snoozes a task out of Now and Next until the given time (2006-01-02, 2006-01-02 15:04, or +duration).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			until, err := parseWhen(args[1])
			if err != nil {
				return err
			}
			return runSnooze(cmd, configPath, args[0], until)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runSnooze(cmd *cobra.Command, configPath, taskID string, until time.Time) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.Snooze(taskID, until)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snoozed %s until %s\n", t.ID, formatWhen(t.SnoozedUntil))
	return nil
}

func newTrashCmd() *cobra.Command {
	var (
		configPath string
		allFuture  bool
	)

	cmd := &cobra.Command{
		Use:   "trash <task-id>",
		Short: "Move a task to the trash",
		Long:  "Trashes a task. For a recurring task, the chain continues from the next instance unless --all-future ends it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrash(cmd, configPath, args[0], allFuture)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().BoolVar(&allFuture, "all-future", false, "also end the recurrence chain")
	return cmd
}

func runTrash(cmd *cobra.Command, configPath, taskID string, allFuture bool) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := st.DeleteTask(taskID, allFuture); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if allFuture {
		fmt.Fprintf(out, "Trashed %s and ended its recurrence\n", taskID)
	} else {
		fmt.Fprintf(out, "Trashed %s\n", taskID)
	}
	return nil
}
