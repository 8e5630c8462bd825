// Command saldowsd loads the SALDO lexicon and exposes it to tools and
// services.
//
// Usage:
//
//	saldowsd load   --saldo saldo.xml.gz
//	saldowsd lookup --saldo saldo.xml hund..1 katt..1
//	saldowsd check  --saldo saldo.xml corpus.tsv
//	saldowsd seed   --saldo saldo.xml [--dry-run]
//	saldowsd migrate
//	saldowsd serve
//
// Settings come from config.yaml (or CONFIG_PATH / --config), then the
// environment, then flags. Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
