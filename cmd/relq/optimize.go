package main

import (
	"github.com/spf13/cobra"

	"github.com/bawdo/relq/visitors"
)

// optimizeOptions holds flags for the optimize and watch commands.
type optimizeOptions struct {
	*rootOptions
	Dialect string
	Inline  bool
	Dot     string
	Passes  []string
}

func (o *optimizeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Dialect, "dialect", "d", "", "SQL dialect (default from config)")
	cmd.Flags().BoolVar(&o.Inline, "inline", false, "inline literals instead of emitting parameters")
	cmd.Flags().StringVar(&o.Dot, "dot", "", "write the optimized tree as a DOT graph to this path")
	cmd.Flags().StringSliceVar(&o.Passes, "passes", nil, "comma separated pass list (default from config)")
}

// session builds a session with the command's overrides applied.
func (o *optimizeOptions) session(cmd *cobra.Command) (*Session, error) {
	cfg := o.cfg
	if len(o.Passes) > 0 {
		cfg.Passes = o.Passes
	}
	s, err := NewSession(cfg, cmd.OutOrStdout(), o.logger)
	if err != nil {
		return nil, err
	}
	if o.Dialect != "" {
		if _, err := visitors.ForDialect(o.Dialect); err != nil {
			return nil, err
		}
		s.dialect = canonicalDialect(o.Dialect)
	}
	s.parameterize = !o.Inline
	return s, nil
}

func newOptimizeCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &optimizeOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "optimize <file>",
		Short: "Optimize an IR document and print the SQL before and after",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			return runOptimize(s, args[0], opts.Dot)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runOptimize(s *Session, path, dot string) error {
	if err := s.load(path); err != nil {
		return err
	}
	if err := s.optimizeAndShow(); err != nil {
		return err
	}
	if dot != "" {
		return s.writeDot(dot)
	}
	return nil
}
