package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quatroapp/quatro/internal/dashboard"
	"github.com/quatroapp/quatro/internal/janitor"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard and background janitor",
		Long:  "Launches the local dashboard with live section updates, plus the scheduled trash purge. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "quatro.yaml", "path to Quatro config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, st, p, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	if port == 0 {
		port = cfg.Dashboard.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	janitorErr := make(chan error, 1)
	go func() {
		janitorErr <- janitor.Start(ctx, janitor.Opts{
			Store:     st,
			Schedule:  cfg.Janitor.Schedule,
			Retention: cfg.Retention(),
			Notifier:  buildNotifier(cfg),
			Out:       cmd.OutOrStdout(),
		})
	}()

	err = dashboard.Start(ctx, dashboard.StartOpts{
		Store:    st,
		Port:     port,
		NowLimit: cfg.NowLimit,
		Out:      cmd.OutOrStdout(),
	})
	cancel()
	if jerr := <-janitorErr; err == nil {
		err = jerr
	}
	return err
}
