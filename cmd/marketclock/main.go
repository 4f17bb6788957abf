// Command marketclock inspects exchange session state from the terminal
// and can run the alert poll loop without the HTTP server.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
