package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formstate/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, os.Args[1:])
	if err != nil && !errors.Is(err, cli.ErrInvalid) {
		fmt.Fprintln(os.Stderr, "formstate:", err)
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
