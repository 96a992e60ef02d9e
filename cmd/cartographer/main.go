// Command cartographer extracts client rules and style guidelines from
// localized copy documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/cli"
	"github.com/custodia-labs/cartographer/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(app.Bootstrap)
	cli.SetConfigInitializer(app.InitConfig)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
