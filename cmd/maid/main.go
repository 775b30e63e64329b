package main

import (
	"os"

	"github.com/lun-4/obsidian-maid/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
