package main

import (
	"os"

	"github.com/kvist-dev/guestpass/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
