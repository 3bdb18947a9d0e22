package main

import (
	"sort"
	"strings"

	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// completionContext describes what kind of completion is appropriate.
type completionContext int

const (
	contextCommand completionContext = iota // start of line or partial command
	contextDialect                          // after dialect
	contextPass                             // after passes
	contextShow                             // after show
)

var showArgs = []string{"after", "before"}

// replCompleter implements readline's AutoCompleter interface.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
// length is the number of chars from end of line[:pos] that form the prefix being completed.
// newLine contains the suffixes to append for each candidate.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	ctx, prefix := c.parseContext(lineStr)

	var candidates []string
	switch ctx {
	case contextCommand:
		candidates = filterPrefix(c.sess.commandNames(), prefix)
	case contextDialect:
		candidates = filterPrefix(visitors.Dialects(), prefix)
	case contextPass:
		candidates = filterPrefix(append(optimizer.PassNames(), "default"), prefix)
	case contextShow:
		candidates = filterPrefix(showArgs, prefix)
	}

	for _, cand := range candidates {
		suffix := cand[len(prefix):]
		newLine = append(newLine, []rune(suffix+" "))
	}
	length = len([]rune(prefix))
	return
}

// parseContext examines the line up to cursor and determines what kind of
// completion is needed and the current prefix being typed.
func (c *replCompleter) parseContext(line string) (completionContext, string) {
	lower := strings.ToLower(line)

	for _, cmd := range c.sess.commands {
		if cmd.completer == nil {
			continue
		}
		p := strings.TrimRight(cmd.prefix, " ") + " "
		if strings.HasPrefix(lower, p) {
			return cmd.completer(line[len(p):])
		}
	}

	return contextCommand, strings.TrimSpace(line)
}

// filterPrefix returns the sorted candidates starting with prefix, case-insensitively.
func filterPrefix(candidates []string, prefix string) []string {
	lp := strings.ToLower(prefix)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lp) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// lastToken returns the last space or comma separated word of s.
func lastToken(s string) string {
	i := strings.LastIndexAny(s, " ,")
	return s[i+1:]
}
