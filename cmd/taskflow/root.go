package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskflow/internal/config"
	"taskflow/internal/serverapp"
)

// cli carries the per-invocation state shared by subcommands.
type cli struct {
	v       *viper.Viper
	cfgPath string
	cfg     *config.Config
	app     *serverapp.App
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - personal task manager",
		Long: `TaskFlow keeps a single list of tasks with due dates, priorities and
optional image attachments. The same store backs the web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.FromViper(c.v, c.cfgPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "taskflow.yml", "Path to the YAML config file")
	flags.String("data-dir", "", "Data directory (overrides storage.data_dir)")
	flags.String("backend", "", "Storage backend: memory, file, sqlite or postgres")
	mustBind(c.v, "storage.data_dir", root, "data-dir")
	mustBind(c.v, "storage.backend", root, "backend")

	root.AddCommand(
		c.addCmd(),
		c.listCmd(),
		c.editCmd(),
		c.toggleCmd(),
		c.rmCmd(),
		c.statsCmd(),
		c.exportICSCmd(),
		c.configCmd(),
		c.backupCmd(),
		c.restoreCmd(),
		c.drillCmd(),
	)
	return root
}

func mustBind(v *viper.Viper, key string, cmd *cobra.Command, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind --%s: %v", flag, err))
	}
}

// open assembles the task stack on first use.
func (c *cli) open(cmd *cobra.Command) (*serverapp.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := serverapp.Open(cmd.Context(), c.cfg, log.New(cmd.ErrOrStderr(), "", 0))
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", c.cfg.Storage.Backend, err)
	}
	c.app = app
	return app, nil
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Encode(cmd.OutOrStdout(), c.cfg)
		},
	}
}
