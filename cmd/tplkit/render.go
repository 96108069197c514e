package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplkit/internal/output"
	"github.com/goliatone/go-tplkit/pkg/render"
	"github.com/goliatone/go-tplkit/pkg/template"
)

// asker prompts for a variable value.
type asker func(key, def string) (string, error)

type renderFlags struct {
	vars   []string
	prompt []string
	output string
	engine string
	watch  bool
}

func newRenderCmd(opts *globalOptions) *cobra.Command {
	return newRenderCmdInternal(opts, surveyAsk)
}

// newRenderCmdInternal builds the render command with an injectable prompt.
func newRenderCmdInternal(opts *globalOptions, ask asker) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <storage> <name>",
		Short: "Render a template",
		Long: `Render a template from a storage with the given variables.

Examples:
  tplkit render templates widget --var title=Hello
  tplkit render templates widget --prompt title --output widget.html
  tplkit render emails welcome --engine scriggo --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, flags, ask, args[0], args[1])
		},
	}

	cmd.Flags().StringArrayVar(&flags.vars, "var", nil, "Bind a variable as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.prompt, "prompt", nil, "Ask for a variable when --var does not set it (repeatable)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().StringVar(&flags.engine, "engine", "auto", "Template engine: auto, pongo or scriggo")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Re-render when the template directories change")
	return cmd
}

func runRender(cmd *cobra.Command, opts *globalOptions, flags *renderFlags, ask asker, storageName, name string) error {
	printer := opts.printer(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	fail := func(err error) error {
		printer.Error(err)
		return err
	}

	vars, err := parseVars(flags.vars)
	if err != nil {
		return fail(err)
	}
	if err := promptVars(vars, flags.prompt, ask); err != nil {
		return fail(err)
	}

	ws, err := loadWorkspace(opts.configPath, logger)
	if err != nil {
		return fail(err)
	}
	tpl, err := ws.bind(storageName, name, vars, flags.engine, render.NewSink(nil))
	if err != nil {
		return fail(err)
	}

	write := func() error {
		return writeRendered(cmd, printer, tpl, flags.output)
	}
	if err := write(); err != nil {
		return fail(err)
	}
	if !flags.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	printer.Warn("watching %s; press Ctrl+C to stop", strings.Join(ws.watchDirs(storageName), ", "))
	err = watchDirs(ctx, ws.watchDirs(storageName), logger, func(changed string) error {
		logger.Info("template changed", "file", changed)
		if err := write(); err != nil {
			printer.Error(err)
		}
		return nil
	})
	if err != nil {
		return fail(output.NewSystemErrorWithCause(err.Error(), err))
	}
	return nil
}

func writeRendered(cmd *cobra.Command, printer *output.Printer, tpl *template.Template, path string) error {
	text, err := tpl.Capture()
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			return output.NewUserErrorWithCause(err.Error(), err)
		}
		return output.NewSystemErrorWithCause(err.Error(), err)
	}

	if path == "" {
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{"name": tpl.Name(), "output": text})
		}
		printer.Print(text)
		return nil
	}

	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return output.NewSystemErrorWithCause(fmt.Sprintf("write %s: %v", path, err), err)
	}
	return printer.Success(map[string]any{
		"message": fmt.Sprintf("rendered %s to %s", tpl.Name(), path),
		"path":    path,
		"bytes":   len(text),
	})
}

// parseVars reads key=value pairs. Later pairs win.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, output.NewUserError(fmt.Sprintf("invalid --var %q; expected key=value", pair))
		}
		vars[key] = value
	}
	return vars, nil
}

// promptVars asks for each key in keys that vars does not already hold.
func promptVars(vars map[string]string, keys []string, ask asker) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := vars[key]; ok {
			continue
		}
		value, err := ask(key, "")
		if err != nil {
			return err
		}
		vars[key] = value
	}
	return nil
}

func surveyAsk(key, def string) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: key + ":",
		Default: def,
		Help:    "Value bound to the template variable " + key,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", output.NewUserError("prompt aborted")
		}
		return "", output.NewSystemErrorWithCause(err.Error(), err)
	}
	return out, nil
}

