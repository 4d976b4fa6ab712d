// cmd/sessionkeeper/main.go
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	ctx := context.Background()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
