// Package main provides the hotpath CLI tool for measuring word lookups,
// analyzing their hot paths and serving them over HTTP.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
