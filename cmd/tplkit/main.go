// Package main provides the tplkit CLI: render, resolve and inspect plugin
// templates against a storage configuration file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplkit/internal/output"
)

// Build info set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	json       bool
	verbose    bool
	color      string
}

func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "tplkit",
		Short: "Resolve and render plugin templates",
		Long: `tplkit resolves plugin templates against a storage configuration and renders them.

Storages map names to template directories. The "templates" storage is
searched in the active theme first, so a theme can override any plugin
template by shipping a file with the same name.

The configuration is read from --config, or from tplkit.yaml, tplkit.yml,
tplkit.json or tplkit.hcl in the working directory.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML, JSON or HCL config file")
	flags.BoolVar(&opts.json, "json", false, "Output in JSON format")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log resolution details to stderr")
	flags.StringVar(&opts.color, "color", "auto", "Color output: auto, always, never")

	lipgloss.SetHasDarkBackground(true)

	cmd.AddCommand(
		newRenderCmd(opts),
		newResolveCmd(opts),
		newStoragesCmd(opts),
	)
	return cmd
}

func (o *globalOptions) printer(cmd *cobra.Command) *output.Printer {
	out := cmd.OutOrStdout()
	isTTY := output.ResolveColorMode(o.color, output.IsTTY(out))
	return output.NewPrinter(out, o.json, isTTY).WithStderr(cmd.ErrOrStderr())
}

func (o *globalOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
