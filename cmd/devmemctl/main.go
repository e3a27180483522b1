package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"devmem/internal/ctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := ctl.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "devmemctl:", err)
		stop()
		os.Exit(1)
	}
}
