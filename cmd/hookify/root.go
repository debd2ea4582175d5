package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
)

// options are the flags shared by every command
type options struct {
	templates string
	logLevel  string
	timeout   time.Duration
	console   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "hookify",
		Short:         "Live-coding sandbox for React hook lessons",
		Long:          `Runs lesson scripts through the sandbox pipeline and prints what they render.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.templates, "templates", "", "template override file (.yaml or .toml)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "interrupt scripts running longer than this (0 disables)")
	flags.BoolVar(&opts.console, "console", false, "capture console output from scripts")

	root.AddCommand(
		newTopicsCmd(),
		newRenderCmd(opts),
		newWatchCmd(opts),
		newServeCmd(),
	)
	return root
}

func (o *options) logger() (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:       o.logLevel,
		OutputPaths: []string{"stderr"},
	})
}

func (o *options) pipeline(logger *logging.Logger) *pipeline.Pipeline {
	cfg := pipeline.Config{
		Runtime: runtime.DefaultConfig(),
		Render:  react.DefaultOptions(),
	}
	cfg.Runtime.Timeout = o.timeout
	cfg.Runtime.EnableConsole = o.console
	return pipeline.New(cfg, logger)
}

// store builds a workspace from the builtin or overridden templates and an
// optional lesson directory
func (o *options) store(dir string, logger *logging.Logger) (*workspace.Store, error) {
	reg, err := templates.Builtin()
	if o.templates != "" {
		reg, err = templates.Load(o.templates)
	}
	if err != nil {
		return nil, err
	}

	s := workspace.New(reg, nil, logger)
	if dir != "" {
		if _, err := workspace.LoadDir(s, dir); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseTopicArg(arg string) (topic.Topic, error) {
	t, err := topic.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("%w; run 'hookify topics' for the list", err)
	}
	return t, nil
}
