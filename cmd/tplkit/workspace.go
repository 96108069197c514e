package main

import (
	"errors"
	"log/slog"

	"github.com/goliatone/go-tplkit/internal/output"
	"github.com/goliatone/go-tplkit/pkg/config"
	"github.com/goliatone/go-tplkit/pkg/pathutil"
	"github.com/goliatone/go-tplkit/pkg/render"
	"github.com/goliatone/go-tplkit/pkg/render/pongo"
	"github.com/goliatone/go-tplkit/pkg/render/scriggo"
	"github.com/goliatone/go-tplkit/pkg/storage"
	"github.com/goliatone/go-tplkit/pkg/template"
)

var defaultConfigFiles = []string{"tplkit.yaml", "tplkit.yml", "tplkit.json", "tplkit.hcl"}

// workspace is a loaded configuration and the registry built from it.
type workspace struct {
	configPath string
	config     *config.Config
	registry   *storage.Registry
	logger     *slog.Logger
}

func loadWorkspace(configPath string, logger *slog.Logger) (*workspace, error) {
	if configPath == "" {
		configPath = pathutil.Locate(defaultConfigFiles)
	}
	if configPath == "" {
		return nil, output.NewUserError("no config file found; pass --config or create tplkit.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, output.NewUserErrorWithCause(err.Error(), err)
	}

	reg := storage.NewRegistry(storage.WithLogger(logger))
	if err := cfg.Apply(reg); err != nil {
		if errors.Is(err, storage.ErrDuplicateStorage) {
			return nil, output.NewConflictErrorWithCause(err.Error(), err)
		}
		return nil, output.NewUserErrorWithCause(err.Error(), err)
	}

	logger.Debug("config loaded", "path", configPath, "storages", reg.List())
	return &workspace{configPath: configPath, config: cfg, registry: reg, logger: logger}, nil
}

// bind builds a template for storageName/name writing to sink.
func (ws *workspace) bind(storageName, name string, vars map[string]string, engine string, sink *render.Sink) (*template.Template, error) {
	engineOpt, err := engineOption(engine)
	if err != nil {
		return nil, err
	}

	opts := []template.Option{
		template.WithSink(sink),
		template.WithLogger(ws.logger),
		engineOpt,
	}
	if ws.config.Extension != "" {
		opts = append(opts, template.WithExtension(ws.config.Extension))
	}

	tpl, err := template.New(ws.registry, storageName, name, vars, opts...)
	if err != nil {
		return nil, output.NewUserErrorWithCause(err.Error(), err)
	}
	return tpl, nil
}

// watchDirs returns the storage directories a binding reads from.
func (ws *workspace) watchDirs(storageName string) []string {
	names := []string{storageName}
	if template.IsThemeAware(storageName) {
		names = []string{storage.ThemeStorage, storageName}
	}
	var dirs []string
	for _, name := range names {
		if dir, err := ws.registry.Path(name); err == nil {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// engineOption maps the --engine flag. "auto" renders with pongo2 and hands
// Markdown files to scriggo.
func engineOption(name string) (template.Option, error) {
	switch name {
	case "", "auto":
		md, err := scriggo.New()
		if err != nil {
			return nil, output.NewSystemErrorWithCause(err.Error(), err)
		}
		engines := render.NewEngines().MustRegister(".md", md)
		return template.WithEngines(engines), nil
	case "pongo", "pongo2":
		return template.WithEngine(pongo.Default()), nil
	case "scriggo":
		engine, err := scriggo.New()
		if err != nil {
			return nil, output.NewSystemErrorWithCause(err.Error(), err)
		}
		return template.WithEngine(engine), nil
	default:
		return nil, output.NewUserError("unknown engine " + name + "; use auto, pongo or scriggo")
	}
}
