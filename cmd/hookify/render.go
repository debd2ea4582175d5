package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
)

// Output formats for render
const (
	formatHTML = "html"
	formatJSON = "json"
	formatTree = "tree"
)

type renderFlags struct {
	script string
	style  string
	dir    string
	format string
}

func newRenderCmd(opts *options) *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <topic>",
		Short: "Run a lesson once and print the result",
		Long: `Runs the topic's script through the sandbox pipeline and prints the
preview document, the outcome as JSON, or the rendered tree.

The script and stylesheet default to the topic's template. --dir loads
<topic>.js/.jsx/.css files first; --script and --style override both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, f, args[0])
		},
	}

	cmd.Flags().StringVar(&f.script, "script", "", "script file")
	cmd.Flags().StringVar(&f.style, "style", "", "stylesheet file")
	cmd.Flags().StringVar(&f.dir, "dir", "", "lesson directory")
	cmd.Flags().StringVar(&f.format, "format", formatHTML, "output format: html, json or tree")
	return cmd
}

func runRender(cmd *cobra.Command, opts *options, f *renderFlags, arg string) error {
	switch f.format {
	case formatHTML, formatJSON, formatTree:
	default:
		return fmt.Errorf("unknown format %q", f.format)
	}

	t, err := parseTopicArg(arg)
	if err != nil {
		return err
	}
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := opts.store(f.dir, logger)
	if err != nil {
		return err
	}
	for kind, path := range map[workspace.FileKind]string{workspace.Script: f.script, workspace.Stylesheet: f.style} {
		if path == "" {
			continue
		}
		text, err := workspace.ReadLesson(path)
		if err != nil {
			return err
		}
		if err := store.Update(t, kind, text); err != nil {
			return err
		}
	}

	files, err := store.Get(t)
	if err != nil {
		return err
	}
	out, session := opts.pipeline(logger).Run(cmd.Context(), t, files.Script)
	if session != nil {
		defer session.Close()
	}

	w := cmd.OutOrStdout()
	switch f.format {
	case formatJSON:
		data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case formatTree:
		writeOutcome(w, out)
	default:
		fmt.Fprintln(w, preview.Render(files.Stylesheet, out))
	}

	if out.Kind == pipeline.Failed {
		return fmt.Errorf("%s failed during %s", t, out.Stage)
	}
	return nil
}

// writeOutcome prints the kind of out followed by its tree or diagnostic
func writeOutcome(w io.Writer, out pipeline.Outcome) {
	fmt.Fprintf(w, "%s: %s (%s)\n", out.Topic, out.Kind, out.Duration.Round(time.Microsecond))
	switch out.Kind {
	case pipeline.Rendered:
		writeTree(w, out.Tree, 0)
	case pipeline.Failed:
		fmt.Fprintln(w, out.Diagnostic)
	}
	for _, entry := range out.Console {
		fmt.Fprintf(w, "console.%s: %s\n", entry.Level, entry.Message)
	}
}

func writeTree(w io.Writer, n *dom.Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	switch n.Type {
	case dom.TextNode:
		fmt.Fprintf(w, "%s%q\n", indent, n.Text)
		return
	case dom.ElementNode:
		line := indent + "<" + n.Tag
		for _, a := range n.Attrs {
			line += fmt.Sprintf(" %s=%q", a.Key, a.Val)
		}
		if n.Interactive {
			line += " #" + n.ID
		}
		fmt.Fprintln(w, line+">")
		depth++
	}
	for _, c := range n.Children {
		writeTree(w, c, depth)
	}
}
