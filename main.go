// file: main.go
// version: 2.0.0
// guid: 2b1f5c3e-8d4a-4e6b-9f70-1a2c3d4e5f60

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/library-enricher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
