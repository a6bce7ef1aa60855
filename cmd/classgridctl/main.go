package main

import (
	"fmt"
	"os"

	"classgrid/backend/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
