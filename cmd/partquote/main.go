package main

import (
	"partquote/cmd/partquote/commands"
	"partquote/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	err := commands.ExecuteContext(ctx)
	if err != nil {
		cancel()
		serviceutil.Fatal("partquote", err)
	}
}
