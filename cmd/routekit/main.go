// Command routekit turns declarative route files into OpenAPI documents.
package main

import (
	"fmt"
	"os"

	"github.com/vitalvas/routekit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
