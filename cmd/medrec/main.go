package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yndnr/medrec/internal/cli/command"
	"github.com/yndnr/medrec/internal/infra/shutdown"
)

func main() {
	app := command.App()

	ctx, stop := shutdown.NewHandler(5 * time.Second).Notify(context.Background())
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
