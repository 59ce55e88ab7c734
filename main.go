// shellgate - a chat-driven remote-execution gateway over one shared
// SSH session.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shellgate/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shellgate: %v\n", err)
		os.Exit(1)
	}
}
