// Command openapi-docs generates and serves OpenAPI documents from route
// manifests.
//
//	openapi-docs generate -m api.yaml -f yaml -o openapi.yaml
//	openapi-docs serve --config config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
