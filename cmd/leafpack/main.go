// Command leafpack packs files into LPK containers and unpacks them again.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
