package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds global flags and what PersistentPreRunE derives from
// them.
type rootOptions struct {
	ConfigPath string
	LogLevel   string

	cfg    config
	logger *slog.Logger
	getenv func(string) string
}

// newRootCommand creates the relq command tree.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:   "relq",
		Short: "relq - relational IR optimizer",
		Long: `Decode relational IR documents, run the optimization pipeline over
them and render the result as SQL.

Configuration is read from --config, $RELQ_CONFIG, ./relq.yaml or
~/.config/relq/relq.yaml. RELQ_ENGINE and DATABASE_URL override the
engine and DSN.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newOptimizeCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newReplCommand(opts))

	return cmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	path, explicit := configPath(o.ConfigPath, o.getenv)
	cfg, err := loadConfig(path, explicit, o.getenv)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if path != "" {
		o.logger.Debug("config loaded", slog.String("path", path))
	}
	return nil
}

func (o *rootOptions) session(cmd *cobra.Command) (*Session, error) {
	return NewSession(o.cfg, cmd.OutOrStdout(), o.logger)
}
