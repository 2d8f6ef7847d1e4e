// Command wmtrace inspects window-manager traces and runs trace scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/cli"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
