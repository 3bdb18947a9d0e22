package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// commandEntry maps a REPL prefix to its handler and optional tab-completer.
type commandEntry struct {
	prefix    string
	handler   func(args string) error
	completer func(args string) (completionContext, string) // nil = no arg completion
	hidden    bool                                          // excluded from commandNames()
	usage     string
}

// initCommands builds the command registry and sorts by prefix length descending.
func (s *Session) initCommands() {
	s.commands = []commandEntry{
		{prefix: "load ", handler: s.cmdLoad, usage: "load <file>          read an IR document"},
		{prefix: "load", handler: func(_ string) error { return errors.New("usage: load <file>") }, hidden: true},
		{prefix: "show", handler: s.cmdShow, completer: completeShowArgs, usage: "show [before|after]  print the SQL of the current tree"},
		{prefix: "optimize", handler: func(_ string) error { return s.optimizeAndShow() }, usage: "optimize             run the pass pipeline"},
		{prefix: "opt", handler: func(_ string) error { return s.optimizeAndShow() }, hidden: true},
		{prefix: "passes", handler: s.setPasses, completer: completePassArgs, usage: "passes [names|default] show or set the pipeline"},
		{prefix: "dialect", handler: s.setDialect, completer: completeDialectArgs, usage: "dialect [name]       show or set the SQL dialect"},
		{prefix: "params", handler: func(_ string) error { return s.cmdParams() }, usage: "params               toggle parameterized output"},
		{prefix: "dot ", handler: func(a string) error { return s.writeDot(strings.TrimSpace(a)) }, usage: "dot <file>           write the current tree as a DOT graph"},
		{prefix: "dot", handler: func(_ string) error { return errors.New("usage: dot <filepath>") }, hidden: true},
		{prefix: "connect", handler: func(a string) error { return s.connect(s.ctx, strings.TrimSpace(a)) }, usage: "connect [dsn]        open the configured engine"},
		{prefix: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }, usage: "disconnect           close the connection"},
		{prefix: "run", handler: func(_ string) error { return s.run(s.ctx) }, usage: "run                  execute the current tree"},
		{prefix: "exec", handler: func(_ string) error { return s.run(s.ctx) }, hidden: true},
		{prefix: "check", handler: func(_ string) error { return s.check(s.ctx) }, usage: "check                compare results before and after optimize"},
		{prefix: "help", handler: func(_ string) error { s.cmdHelp(); return nil }, usage: "help                 show this list"},
	}

	// Sort by prefix length descending so longest prefixes match first.
	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// Execute runs one REPL line.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)
	for _, cmd := range s.commands {
		p := cmd.prefix
		if strings.HasSuffix(p, " ") {
			if strings.HasPrefix(lower, p) {
				return cmd.handler(strings.TrimSpace(line[len(p):]))
			}
			continue
		}
		if lower == p || strings.HasPrefix(lower, p+" ") {
			return cmd.handler(strings.TrimSpace(line[len(p):]))
		}
	}
	return fmt.Errorf("unknown command: %q (type 'help')", line)
}

// commandNames derives the command name list from the registry for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		if cmd.hidden {
			continue
		}
		name := strings.TrimRight(cmd.prefix, " ")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	// exit/quit are handled by the REPL loop, not Execute().
	names = append(names, "exit", "quit")
	sort.Strings(names)
	return names
}

func (s *Session) cmdLoad(args string) error {
	if err := s.load(args); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "  Loaded %s: %s, %d aliases\n", s.path, s.doc.Root.Kind(), len(s.doc.Aliases))
	return nil
}

func (s *Session) cmdShow(args string) error {
	if s.doc == nil {
		return errNoDocument
	}
	switch strings.ToLower(args) {
	case "before":
		return s.writeSQL("before", s.doc.Root)
	case "after":
		if s.report == nil {
			return errors.New("not optimized yet (use 'optimize')")
		}
		return s.writeSQL("after", s.report.Output)
	case "":
		e, _ := s.current()
		label := "before"
		if s.report != nil {
			label = "after"
		}
		return s.writeSQL(label, e)
	default:
		return fmt.Errorf("usage: show [before|after]")
	}
}

func (s *Session) cmdParams() error {
	s.parameterize = !s.parameterize
	if s.parameterize {
		fmt.Fprintln(s.out, "  Parameterized output: on")
	} else {
		fmt.Fprintln(s.out, "  Parameterized output: off (literals inlined)")
	}
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errors.New("not connected")
	}
	if err := s.Close(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "  Disconnected.")
	return nil
}

func (s *Session) cmdHelp() {
	var lines []string
	for _, cmd := range s.commands {
		if !cmd.hidden && cmd.usage != "" {
			lines = append(lines, cmd.usage)
		}
	}
	sort.Strings(lines)
	fmt.Fprintln(s.out, "Commands:")
	for _, l := range lines {
		fmt.Fprintf(s.out, "  %s\n", l)
	}
	fmt.Fprintln(s.out, "  exit | quit           leave the REPL")
}

// --- Completion helpers ---

func completeShowArgs(args string) (completionContext, string) {
	return contextShow, strings.TrimSpace(args)
}

func completeDialectArgs(args string) (completionContext, string) {
	return contextDialect, strings.TrimSpace(args)
}

// completePassArgs completes the pass name being typed after any
// already chosen ones.
func completePassArgs(args string) (completionContext, string) {
	if strings.HasSuffix(args, " ") || strings.HasSuffix(args, ",") {
		return contextPass, ""
	}
	return contextPass, lastToken(args)
}
