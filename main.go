// File: vetclinic/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"vetclinic/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
