package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/recur"
)

func newRecurCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recur",
		Short: "Manage task recurrence",
	}

	cmd.AddCommand(newRecurSetCmd())
	cmd.AddCommand(newRecurClearCmd())
	return cmd
}

func newRecurSetCmd() *cobra.Command {
	var (
		configPath string
		preset     string
		unit       string
		amount     int
		days       string
	)

	cmd := &cobra.Command{
		Use:   "set <task-id>",
		Short: "Attach a repeat cadence to a task",
		Long: `Attaches recurrence to a task with a scheduled start. Use a preset
(everyDay, weekdays, weekly, monthly) or a custom cadence via --unit,
--amount, and --days (comma-separated, e.g. mon,wed,fri for weekly units).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset != "" && unit != "" {
				return fmt.Errorf("use either --preset or --unit, not both")
			}
			if preset == "" && unit == "" {
				return fmt.Errorf("one of --preset or --unit is required")
			}
			return runRecurSet(cmd, configPath, args[0], preset, unit, amount, days)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().StringVar(&preset, "preset", "", "preset cadence (everyDay, weekdays, weekly, monthly)")
	cmd.Flags().StringVar(&unit, "unit", "", "custom cadence unit (day, week, month)")
	cmd.Flags().IntVar(&amount, "amount", 1, "repeat every N units")
	cmd.Flags().StringVar(&days, "days", "", "active weekdays for week units (e.g. mon,wed,fri)")
	return cmd
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

func runRecurSet(cmd *cobra.Command, configPath, taskID, preset, unit string, amount int, days string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := st.GetTask(taskID)
	if err != nil {
		return err
	}

	var candidate models.RecurringConfig
	if preset != "" {
		ref := time.Now()
		if t.ScheduledStart != nil {
			ref = *t.ScheduledStart
		}
		found := false
		for _, pr := range recur.Presets(ref) {
			if pr.Key == preset {
				candidate = pr.Config
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown preset %q", preset)
		}
	} else {
		candidate = models.RecurringConfig{Unit: unit, Amount: amount}
		for _, name := range strings.Split(days, ",") {
			name = strings.TrimSpace(strings.ToLower(name))
			if name == "" {
				continue
			}
			wd, ok := weekdayNames[name]
			if !ok {
				return fmt.Errorf("unknown weekday %q", name)
			}
			candidate.SetWeekday(wd, true)
		}
	}

	cfg, err := st.SetRecurrence(taskID, candidate.Unit, candidate.Amount, &candidate)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Task %s repeats: %s\n", taskID, recur.Describe(cfg))
	return nil
}

func newRecurClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear <task-id>",
		Short: "Detach a task from its recurrence chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecurClear(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	return cmd
}

func runRecurClear(cmd *cobra.Command, configPath, taskID string) error {
	_, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := st.ClearRecurrence(taskID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Task %s no longer repeats\n", taskID)
	return nil
}
