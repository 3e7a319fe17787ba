package main

import (
	"os"

	"github.com/yanqian/smart-faq/internal/cli"
)

// version is set by ldflags.
var version = "dev"

func main() {
	cmd := cli.NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
