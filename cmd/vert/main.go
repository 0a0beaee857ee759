package main

import (
	"os"

	"github.com/verttool/vert/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
