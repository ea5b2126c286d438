// Command supicore inspects and edits table records through the query layer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Supinic/supi-core-sub000/internal/cli"
)

// Version information, set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	cancel()
	os.Exit(cli.GetExitCode(err))
}

// run executes the root command. ExitErrors have already been reported by
// the command's formatter; anything else is printed here.
func run(ctx context.Context) error {
	cli.Version = version

	err := cli.NewRootCommand().ExecuteContext(ctx)
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
