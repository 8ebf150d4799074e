package main

import (
	"os"

	"github.com/spigell/resume-rater/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
