// Package main is the entry point for the receiving validators.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"receiving/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// cobra prints the error itself
	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
