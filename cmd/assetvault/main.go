package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Cobra prints the error, so we just need to exit.
		os.Exit(1)
	}
}
