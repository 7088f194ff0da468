// Command biclique searches toy ciphers for independent bicliques and
// archives the results.
//
//	biclique search --config biclique.yaml
//	biclique list
//	biclique inspect runs/<run-id>.bcq
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
