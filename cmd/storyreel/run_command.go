package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/api"
	"storyreel/internal/logging"
	"storyreel/internal/preflight"
	"storyreel/internal/projects"
	"storyreel/internal/workflow"
)

const version = "0.1.0"

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the render daemon and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx, skipPreflight)
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip startup environment checks")
	return cmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, skipPreflight bool) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if !skipPreflight {
		results := preflight.RunAll(signalCtx, cfg)
		for _, result := range results {
			if !result.Passed {
				logger.Error("preflight check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail))
			}
		}
		if !preflight.AllPassed(results) {
			return fmt.Errorf("preflight checks failed; run `storyreel preflight` for details")
		}
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "storyreel.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := projects.Open(cfg)
	if err != nil {
		logger.Error("open project store", logging.Error(err))
		return err
	}
	defer store.Close()

	manager := workflow.NewManager(cfg, store, logger)
	if err := manager.Start(signalCtx); err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	defer manager.Stop()

	server := api.NewServer(api.ServerConfig{
		Config:    cfg,
		Store:     store,
		Logger:    logger,
		Version:   version,
		StartTime: time.Now(),
	})
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	logger.Info("storyreel daemon started",
		logging.String("addr", server.Addr()),
		logging.String("store", store.Path()))

	select {
	case <-signalCtx.Done():
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", logging.Error(err))
			return err
		}
	}

	logger.Info("storyreel daemon shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", logging.Error(err))
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}
