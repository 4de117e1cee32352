package main

import (
	"os"

	"github.com/pawminder/pawminder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
