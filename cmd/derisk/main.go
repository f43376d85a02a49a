package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/derisk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, nil, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "derisk: %v\n", err)
		stop()
		os.Exit(1)
	}
}
