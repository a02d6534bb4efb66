package main

import (
	"os"

	"github.com/rustyeddy/reflect/cmd/reflect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
