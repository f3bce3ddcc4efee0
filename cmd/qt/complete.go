package main

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func newCompleteCmd() *cobra.Command {
	var (
		configPath string
		noUndo     bool
	)

	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as completed",
		Long:  "Marks a task as completed. If the task anchors a recurrence chain, the next instance is spawned in the same step. Undo is offered for a short window afterward.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, configPath, args[0], noUndo)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().BoolVar(&noUndo, "no-undo", false, "skip the undo window")
	return cmd
}

func runComplete(cmd *cobra.Command, configPath, taskID string, noUndo bool) error {
	cfg, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.GetTask(taskID)
	if err != nil {
		return err
	}

	undo, err := st.CompleteTask(taskID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Completed %s: %s\n", t.ID, t.Title)

	if noUndo || cfg.UndoWindow() <= 0 {
		return nil
	}

	fmt.Fprintf(out, "Press Enter within %s to undo...\n", cfg.UndoWindow())
	if !waitForLine(cmd.InOrStdin(), cfg.UndoWindow()) {
		return nil
	}

	if err := undo(); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	fmt.Fprintf(out, "Undone: %s is active again\n", t.ID)
	return nil
}

// waitForLine reads one line from r, giving up after the window elapses.
func waitForLine(r io.Reader, window time.Duration) bool {
	lineCh := make(chan struct{}, 1)
	go func() {
		reader := bufio.NewReader(r)
		if _, err := reader.ReadString('\n'); err == nil {
			lineCh <- struct{}{}
		}
	}()

	select {
	case <-lineCh:
		return true
	case <-time.After(window):
		return false
	}
}

func newUncompleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "uncomplete <task-id>",
		Short: "Mark a completed task as active again",
		Long:  "Clears the completed timestamp. An untouched instance spawned by the completion is retracted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUncomplete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runUncomplete(cmd *cobra.Command, configPath, taskID string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := st.MarkIncomplete(taskID); err != nil {
		return err
	}

	t, err := st.GetTask(taskID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s is active again: %s\n", t.ID, t.Title)
	return nil
}
