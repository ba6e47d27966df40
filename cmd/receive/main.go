// Package main is the batch import CLI. It reads a receipt from a YAML or
// XLSX file and applies it to the inventory store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
