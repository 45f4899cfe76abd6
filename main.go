package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"zeroswap/cmd"
	"zeroswap/pkg/errs"
)

func main() {
	// A .env file is a convenience; secrets may come from the environment.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errs.ExitCode(err))
	}
}
