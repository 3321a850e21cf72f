package main

import (
	"os"

	"github.com/rangeid/bbctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
