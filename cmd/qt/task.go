package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/quatroapp/quatro/internal/dashboard"
	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/recur"
	"github.com/quatroapp/quatro/internal/store"
)

func newAddCmd() *cobra.Command {
	var (
		configPath  string
		description string
		impact      int
		effort      int
		due         string
		start       string
		top         bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new task",
		Long:  "Creates a task with the given title. Impact and effort each range 0-4; the score is impact squared times effort.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := store.CreateOpts{
				Title:       strings.Join(args, " "),
				Description: description,
				Impact:      impact,
				Effort:      effort,
				AtHead:      top,
			}
			if due != "" {
				t, err := parseWhen(due)
				if err != nil {
					return err
				}
				opts.Due = &t
			}
			if start != "" {
				t, err := parseWhen(start)
				if err != nil {
					return err
				}
				opts.ScheduledStart = &t
			}
			return runAdd(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().IntVar(&impact, "impact", 0, "impact rating (0-4)")
	cmd.Flags().IntVar(&effort, "effort", 0, "effort rating (0-4)")
	cmd.Flags().StringVar(&due, "due", "", "due date (2006-01-02 or +duration)")
	cmd.Flags().StringVar(&start, "start", "", "scheduled start (2006-01-02 or +duration)")
	cmd.Flags().BoolVar(&top, "top", false, "insert at the top of the manual rank order")
	return cmd
}

func runAdd(cmd *cobra.Command, configPath string, opts store.CreateOpts) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.CreateTask(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task %s: %s (score %d)\n", t.ID, t.Title, t.Score)
	return nil
}

func newListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list [now|next|scheduled|blocked|completed]",
		Short: "List tasks by dashboard section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := ""
			if len(args) == 1 {
				section = strings.ToLower(args[0])
			}
			return runList(cmd, configPath, section)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runList(cmd *cobra.Command, configPath, section string) error {
	cfg, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	sections := dashboard.Classify(st.Snapshot(), time.Now(), cfg.NowLimit)

	groups := []struct {
		name  string
		tasks []*models.Task
	}{
		{"now", sections.Now},
		{"next", sections.Next},
		{"scheduled", sections.Scheduled},
		{"blocked", sections.Blocked},
		{"completed", sections.Completed},
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tTITLE\tDUE\tSTART")
	for _, g := range groups {
		if section != "" && g.name != section {
			continue
		}
		if len(g.tasks) == 0 {
			continue
		}
		fmt.Fprintf(w, "[%s]\t\t\t\t\n", strings.ToUpper(g.name))
		for _, t := range g.tasks {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", t.ID, t.Score, t.Title, formatWhen(t.Due), formatWhen(t.ScheduledStart))
		}
	}
	return w.Flush()
}

func newShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runShow(cmd *cobra.Command, configPath, taskID string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.GetTask(taskID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", t.ID, t.Title)
	if t.Description != "" {
		fmt.Fprintf(out, "  %s\n", t.Description)
	}
	fmt.Fprintf(out, "  Impact: %d  Effort: %d  Score: %d\n", t.Impact, t.Effort, t.Score)
	fmt.Fprintf(out, "  Due: %s  Start: %s\n", formatWhen(t.Due), formatWhen(t.ScheduledStart))
	if t.SnoozedUntil != nil {
		fmt.Fprintf(out, "  Snoozed until: %s\n", formatWhen(t.SnoozedUntil))
	}
	if t.Completed != nil {
		fmt.Fprintf(out, "  Completed: %s\n", formatWhen(t.Completed))
	}

	if t.RecurringConfigID != nil {
		if cfg, err := st.GetConfig(*t.RecurringConfigID); err == nil {
			fmt.Fprintf(out, "  Repeats: %s\n", recur.Describe(cfg))
		}
	}

	if len(t.Blockers) > 0 {
		fmt.Fprintln(out, "  Blocked by:")
		for _, b := range t.Blockers {
			switch b.Kind {
			case models.BlockerKindTask:
				fmt.Fprintf(out, "    [%d] task %s\n", b.Ordinal, *b.BlockerTaskID)
			default:
				fmt.Fprintf(out, "    [%d] %s\n", b.Ordinal, b.Value)
			}
		}
	}

	if len(t.Subtasks) > 0 {
		fmt.Fprintln(out, "  Subtasks:")
		for _, sub := range t.Subtasks {
			mark := " "
			if sub.Completed {
				mark = "x"
			}
			fmt.Fprintf(out, "    [%s] %s  %s\n", mark, sub.ID, sub.Title)
		}
	}
	return nil
}

func newUpdateCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		description string
		impact      int
		effort      int
		due         string
		start       string
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields",
		Long:  "Updates the given fields. Pass \"none\" to --due or --start to clear them; clearing the start also detaches any recurrence anchored to it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("impact") {
				patch.Impact = &impact
			}
			if cmd.Flags().Changed("effort") {
				patch.Effort = &effort
			}
			var err error
			if patch.Due, err = parseOptTime(cmd, "due", due); err != nil {
				return err
			}
			if patch.ScheduledStart, err = parseOptTime(cmd, "start", start); err != nil {
				return err
			}
			return runUpdate(cmd, configPath, args[0], patch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().IntVar(&impact, "impact", 0, "impact rating (0-4)")
	cmd.Flags().IntVar(&effort, "effort", 0, "effort rating (0-4)")
	cmd.Flags().StringVar(&due, "due", "", "due date, or \"none\" to clear")
	cmd.Flags().StringVar(&start, "start", "", "scheduled start, or \"none\" to clear")
	return cmd
}

// parseOptTime converts a nullable-timestamp flag into an OptTime patch
// field. An unchanged flag leaves the field untouched.
func parseOptTime(cmd *cobra.Command, name, value string) (store.OptTime, error) {
	if !cmd.Flags().Changed(name) {
		return store.OptTime{}, nil
	}
	if value == "none" {
		return store.ClearTime(), nil
	}
	t, err := parseWhen(value)
	if err != nil {
		return store.OptTime{}, err
	}
	return store.SetTime(t), nil
}

func runUpdate(cmd *cobra.Command, configPath, taskID string, patch store.Patch) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.UpdateTask(taskID, patch)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s (score %d)\n", t.ID, t.Title, t.Score)
	return nil
}
