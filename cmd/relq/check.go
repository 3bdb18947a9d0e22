package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// checkOptions holds flags for the check command.
type checkOptions struct {
	*rootOptions
	Engine string
	DSN    string
	Setup  string // path of an SQL script
	Passes []string
}

func newCheckCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &checkOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Run a document before and after optimization and compare the results",
		Long: `Run the input tree and the optimized tree against a database and
compare the materialized results. Updates and deletes run inside a
transaction that is rolled back. The command fails when the results differ.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Engine, "engine", "", "database engine (postgres|mysql|sqlite)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name")
	cmd.Flags().StringVar(&opts.Setup, "setup", "", "SQL script to run after connecting")
	cmd.Flags().StringSliceVar(&opts.Passes, "passes", nil, "comma separated pass list (default from config)")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions, path string) error {
	cfg := opts.cfg
	if opts.Engine != "" {
		if !isValidEngine(opts.Engine) {
			return fmt.Errorf("unknown engine %q", opts.Engine)
		}
		cfg.Engine = opts.Engine
	}
	if opts.DSN != "" {
		cfg.DSN = opts.DSN
	}
	if opts.Setup != "" {
		script, err := os.ReadFile(opts.Setup)
		if err != nil {
			return err
		}
		cfg.Setup = string(script)
	}
	if len(opts.Passes) > 0 {
		cfg.Passes = opts.Passes
	}
	// results come back from the engine, so render in its dialect
	cfg.Dialect = cfg.Engine

	s, err := NewSession(cfg, cmd.OutOrStdout(), opts.logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.load(path); err != nil {
		return err
	}
	conn, err := connect(cmd.Context(), cfg.Engine, cfg.DSN, cfg.Setup)
	if err != nil {
		return err
	}
	s.conn = conn
	return s.check(cmd.Context())
}
