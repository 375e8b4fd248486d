package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/krau/konaclassify/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx)
	cancel()
	if err != nil {
		slog.Error("konaclassify failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
