package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tplkit/internal/output"
	"github.com/goliatone/go-tplkit/pkg/storage"
)

type storageRow struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

func newStoragesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "storages",
		Short: "List configured storages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := opts.printer(cmd)
			ws, err := loadWorkspace(opts.configPath, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				printer.Error(err)
				return err
			}

			rows, err := storageRows(ws.registry)
			if err != nil {
				err = output.NewSystemErrorWithCause(err.Error(), err)
				printer.Error(err)
				return err
			}

			if printer.IsJSON() {
				return printer.WriteJSON(map[string]any{
					"config":   ws.configPath,
					"base_dir": ws.registry.BaseDir(),
					"base_url": ws.registry.BaseURL(),
					"storages": rows,
				})
			}
			if len(rows) == 0 {
				printer.Warn("no storages configured in %s", ws.configPath)
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{row.Name, row.Path, row.URL})
			}
			printer.Table([]string{"NAME", "PATH", "URL"}, table)
			return nil
		},
	}
}

func storageRows(reg *storage.Registry) ([]storageRow, error) {
	names := reg.List()
	rows := make([]storageRow, 0, len(names))
	for _, name := range names {
		entry, err := reg.Entry(name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, storageRow{Name: name, Path: entry.Path, URL: entry.URL})
	}
	return rows, nil
}
