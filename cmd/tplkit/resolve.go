package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplkit/internal/output"
	"github.com/goliatone/go-tplkit/pkg/render"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var extension string

	cmd := &cobra.Command{
		Use:   "resolve <storage> <name>",
		Short: "Show which file a template resolves to",
		Long: `Show the file a template resolves to and whether it exists.

For the "templates" storage the theme copy is preferred over the plugin copy.

Examples:
  tplkit resolve templates widget
  tplkit resolve templates widget --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := opts.printer(cmd)
			ws, err := loadWorkspace(opts.configPath, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				printer.Error(err)
				return err
			}
			if extension != "" {
				ws.config.Extension = extension
			}

			tpl, err := ws.bind(args[0], args[1], nil, "auto", render.NewSink(nil))
			if err != nil {
				printer.Error(err)
				return err
			}
			path, err := tpl.ResolvePath()
			if err != nil {
				err = output.NewUserErrorWithCause(err.Error(), err)
				printer.Error(err)
				return err
			}

			result := map[string]any{
				"storage": tpl.Storage(),
				"name":    tpl.Name(),
				"path":    path,
				"exists":  tpl.Exists(),
			}
			if printer.IsJSON() {
				return printer.WriteJSON(result)
			}
			if path == "" {
				path = printer.Dim("(no candidate exists)")
			}
			printer.KeyValue("path", path)
			printer.KeyValue("exists", boolText(tpl.Exists()))
			return nil
		},
	}

	cmd.Flags().StringVar(&extension, "extension", "", "Override the template file extension")
	return cmd
}

func boolText(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
