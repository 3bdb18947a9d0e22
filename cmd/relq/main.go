// Command relq decodes relational IR documents, optimizes them and
// renders SQL.
//
// Usage:
//
//	relq optimize query.yaml --dialect mysql
//	relq check query.yaml --engine sqlite --dsn app.db
//	relq watch query.yaml
//	relq repl
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
