package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
)

const prompt = "relq> "

func newReplCommand(rootOpts *rootOptions) *cobra.Command {
	var load string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive session: load, optimize, run and check documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.session(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			s.ctx = cmd.Context()
			return runRepl(s, load)
		},
	}
	cmd.Flags().StringVar(&load, "load", "", "document to load on start")
	return cmd
}

func runRepl(s *Session, load string) error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    &replCompleter{sess: s},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintf(s.out, "relq REPL (dialect %s, engine %s) - type 'help' for commands, 'exit' to quit\n", s.dialect, s.cfg.Engine)
	if load != "" {
		if err := s.cmdLoad(load); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	if os.Getenv("DATABASE_URL") != "" {
		if err := s.connect(s.ctx, ""); err != nil {
			fmt.Fprintf(os.Stderr, "  Warning: DATABASE_URL connect failed: %v\n", err)
		}
	}

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit", `\q`:
			return nil
		}
		if err := s.Execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".relq_history")
}
