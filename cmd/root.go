package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zeroswap/pkg/errs"
)

var rootCmd = &cobra.Command{
	Use:   "zeroswap",
	Short: "A CLI for ERC-20 swaps using the 0x permit2 aggregation API",
	Long: `zeroswap is a command-line tool that executes single token swaps on
EVM chains through the 0x swap aggregation API. It fetches a price, resolves
token allowances, signs the permit2 payload, and broadcasts the swap.

Examples:
  zeroswap swap 0.1 WETH to USDC
  zeroswap sources
  zeroswap status <tx-hash>`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func exitOnError(err error) {
	printError(err)
	os.Exit(errs.ExitCode(err))
}
