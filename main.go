package main

import (
	"os"

	"github.com/pollenops/pollenguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
