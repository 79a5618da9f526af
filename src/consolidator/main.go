package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	consolidator "sales-analysis/src/consolidator/lib"
)

const (
	SUCCESS_EXIT_CODE                 = 0
	ERROR_DURING_PROCESSING_EXIT_CODE = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := consolidator.NewRootCommand(os.Stdin, os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ERROR_DURING_PROCESSING_EXIT_CODE)
	}
	stop()
	os.Exit(SUCCESS_EXIT_CODE)
}
