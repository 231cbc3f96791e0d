package main

import (
	"os"

	"github.com/ahvonen/notesmith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
