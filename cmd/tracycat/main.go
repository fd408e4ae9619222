package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ChenRenault/tracy/cmd/tracycat/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := 0
	if err := cmd.NewRootCommand().ExecuteContext(ctx); err != nil {
		code = 1
	}
	stop()
	os.Exit(code)
}
