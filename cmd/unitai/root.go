package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bqhou/unitai/cache"
	"github.com/bqhou/unitai/config"
	"github.com/bqhou/unitai/insight"
	"github.com/bqhou/unitai/logging"
	"github.com/bqhou/unitai/mcpserver"
	"github.com/bqhou/unitai/model"
	"github.com/bqhou/unitai/provider"
)

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	configPath string
	logLevel   string
	jsonOut    bool

	cfg    *config.Config
	logger *logging.UnitAILogger
	store  cache.Store
	out    io.Writer

	// Replaced in tests.
	getenv   func(string) string
	newModel func(ctx context.Context, cfg *config.Config) (model.Model, error)
}

func newApp() *app {
	return &app{out: os.Stdout, getenv: os.Getenv, newModel: provider.New}
}

func newRootCmd(a *app) *cobra.Command {

	root := &cobra.Command{
		Use:           "unitai",
		Short:         "Convert between US customary and metric units",
		Version:       mcpserver.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: $UNITAI_CONFIG, ./unitai.yaml, ~/.config/unitai/unitai.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newUnitsCmd(a),
		newConvertCmd(a),
		newLookupCmd(a),
		newInsightsCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		Component: "cli",
	})
	a.logger.Debug("config.loaded",
		"config.path", cfg.Path,
		"provider", cfg.Provider,
		"api_key", cfg.MaskedAPIKey(),
		"cache.driver", cfg.Cache.Driver,
	)
	return nil
}

func (a *app) teardown() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// insights builds the insight client. A missing credential is not fatal:
// the client is returned without a model and fails each call with
// insight.ErrMissingCredential.
func (a *app) insights(ctx context.Context) (*insight.Client, error) {
	m, err := a.newModel(ctx, a.cfg)
	if err != nil {
		if !errors.Is(err, model.ErrMissingAPIKey) {
			return nil, err
		}
		a.logger.Warn("provider.credential_missing", "provider", a.cfg.Provider)
		m = nil
	}

	if a.store == nil {
		store, err := cache.Open(a.cfg.Cache.Driver, a.cfg.Cache.Path, func(o *cache.Options) {
			o.TTL = a.cfg.Cache.TTL
		})
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		a.store = store
	}

	return insight.NewClient(m, func(o *insight.Options) {
		o.Logger = a.logger.WithComponent("insight")
		o.Timeout = a.cfg.RequestTimeout
		if a.store != nil {
			o.Cache = a.store
		}
	}), nil
}
