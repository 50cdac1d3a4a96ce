// Command reconcile matches a music library against MusicBrainz and renames
// it into {artist}/{album} (year)/{NN - title} folders.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		}
		stop()
		os.Exit(1)
	}
}
