package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"car-catalog/pkg/client/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := cli.NewRootCommand(os.Stdin, os.Stdout)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
