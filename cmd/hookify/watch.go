package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
)

func newWatchCmd(opts *options) *cobra.Command {
	var script, style string

	cmd := &cobra.Command{
		Use:   "watch <topic>",
		Short: "Rerun a lesson every time its files are saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), opts, args[0], script, style)
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "script file")
	cmd.Flags().StringVar(&style, "style", "", "stylesheet file")
	cmd.MarkFlagRequired("script")
	return cmd
}

func runWatch(ctx context.Context, w io.Writer, opts *options, arg, script, style string) error {
	t, err := parseTopicArg(arg)
	if err != nil {
		return err
	}
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := opts.store("", logger)
	if err != nil {
		return err
	}
	watcher, err := workspace.NewWatcher(store, t, map[workspace.FileKind]string{
		workspace.Script:     script,
		workspace.Stylesheet: style,
	}, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Load(); err != nil {
		return err
	}
	if err := store.SetActive(t); err != nil {
		return err
	}

	ctrl := preview.NewController(store, pipeline.NewBoundary(opts.pipeline(logger)), logger)
	var mu sync.Mutex
	ctrl.Subscribe(func(snap preview.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "--- #%d %s\n", snap.Seq, snap.Trigger)
		writeOutcome(w, snap.Outcome)
	})
	ctrl.Start(ctx)
	defer ctrl.Stop()

	fmt.Fprintf(w, "watching %s, press Ctrl+C to stop\n", script)
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
