package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/lasdev/internal/config"
	"github.com/danmuck/lasdev/internal/loader"
	"github.com/danmuck/lasdev/internal/logging"
)

const defaultConfigPath = "lasdev.toml"

// app is the state shared by subcommands once the root pre-run has loaded
// configuration.
type app struct {
	cfgFile string
	verbose bool

	cfg    config.Config
	loader *loader.Loader
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lasdev",
		Short: "Read, check and rewrite LAS well logs and DEV deviation surveys",
		Long: `lasdev parses LAS 1.2, 2.0 and 3.0 well log files and DEV deviation
surveys, reports their structure, compares them and writes them back in
canonical form.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./lasdev.toml when present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newInspectCmd(a),
		newConvertCmd(a),
		newCompareCmd(a),
		newDevCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	// config subcommands operate on files that may not be valid yet.
	if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		logging.InitLogger("lasdev")
		return nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	lc := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
		lc.Level = lvl
	}
	lc.NoColor = cfg.Log.NoColor
	logging.ApplyEnv(&lc)
	if a.verbose {
		lc.Level = zerolog.DebugLevel
	}
	logging.Apply(lc)
	logging.InitLogger("lasdev")

	l, err := loader.New(cfg)
	if err != nil {
		return err
	}
	a.loader = l
	return nil
}

func (a *app) loadConfig() (config.Config, error) {
	path := a.cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	log.Debug().Str("path", path).Msg("config loaded")
	return cfg, nil
}
