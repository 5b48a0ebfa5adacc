package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docslice/internal/api"
	"github.com/dgallion1/docslice/internal/batch"
	"github.com/dgallion1/docslice/internal/config"
	"github.com/dgallion1/docslice/internal/docsvc"
	"github.com/dgallion1/docslice/internal/engine"
	"github.com/dgallion1/docslice/internal/journal"
)

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every file in the input folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, *configPath)
		},
	}
}

func runBatch(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("invalid configuration", "error", err)
		return err
	}
	log := newLogger(cfg.Processing.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := engine.DefaultRegistry()
	svc := docsvc.New(reg, log)
	runID := uuid.NewString()

	ctrl := batch.NewController(svc, reg, batch.Options{
		RunID: runID,
		Folders: batch.Folders{
			Input:     cfg.Paths.InputFolder,
			Output:    cfg.Paths.OutputFolder,
			Unsupport: cfg.Paths.UnsupportFolder,
			Old:       cfg.Paths.OldFolder,
			Temp:      cfg.Paths.TempFolder,
		},
		Query:  cfg.Query(),
		Styles: cfg.HeadingStyles(),
		Settle: cfg.SettleDelay(),
	}, log)

	if cfg.Processing.Journal != "" {
		store, err := journal.Open(cfg.Processing.Journal)
		if err != nil {
			log.Error("open journal", "error", err)
			return err
		}
		defer store.Close()
		ctrl.WithRecorder(store)
	}

	if cfg.Processing.StatusAddr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if _, err := api.NewServer(ctrl, log).Start(srvCtx, cfg.Processing.StatusAddr); err != nil {
			log.Error("start status server", "error", err)
			return err
		}
	}

	result, err := ctrl.Run(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "succeeded=%d failed=%d errored=%d unsupported=%d\n",
		result.Succeeded, result.Failed, result.Errored, result.Unsupported)
	if err != nil && ctx.Err() == nil {
		log.Error("run aborted", "error", err)
		return err
	}
	return nil
}
