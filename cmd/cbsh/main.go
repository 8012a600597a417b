// Command cbsh solves multi-agent path finding instances on grids.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/elektrokombinacija/cbsh-mapf/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
