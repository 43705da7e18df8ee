package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"celltab/pkg/lib"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		lib.Exit(err)
	}
}
