package main

import (
	"os"

	"github.com/jfk9w/maxbot/cmd/maxbot/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
