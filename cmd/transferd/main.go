package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/micahjlucas/TransferProvider/internal/cli"
)

func main() {
	// Optional .env file; absent is fine.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
