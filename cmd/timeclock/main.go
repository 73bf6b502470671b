package main

import (
	"os"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
