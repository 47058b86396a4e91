package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tinyzimmer/imgfetch/pkg/cmd"
	"github.com/tinyzimmer/imgfetch/pkg/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := cmd.GetRootCommand().ExecuteContext(ctx); err != nil {
		cancel()
		log.Error(err)
		os.Exit(1)
	}
}
