package main

import (
	"os"

	"github.com/cwarden/termcal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
