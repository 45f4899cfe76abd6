package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zeroswap/config"
	"zeroswap/pkg/client"
)

var sourcesChainID int64

var sourcesCmd = &cobra.Command{
	Use:     "sources",
	Aliases: []string{"list-sources", "ls"},
	Short:   "List the liquidity sources supported on a chain",
	Long: `List every liquidity source the aggregator can route through on the
configured chain, in the order the API reports them.

Examples:
  zeroswap sources
  zeroswap sources --chain-id 8453
  zeroswap sources --json`,
	Run: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	sourcesCmd.Flags().Int64Var(&sourcesChainID, "chain-id", 0, "Chain ID to query (defaults to the configured chain)")
}

func runSources(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		exitOnError(err)
	}

	chainID := cfg.ChainID
	if sourcesChainID != 0 {
		chainID = sourcesChainID
	}

	apiClient := client.NewZeroExClient(cfg.APIKey, cfg.BaseURL)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching liquidity sources..."
		s.Start()
	}

	sources, err := apiClient.GetSources(context.Background(), chainID)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		exitOnError(err)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(sources, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displaySources(chainID, sources)
}

func displaySources(chainID int64, sources []string) {
	if len(sources) == 0 {
		fmt.Printf("\nNo liquidity sources reported for chain %d.\n", chainID)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  LIQUIDITY SOURCES")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nChain ID: %d\n\n", chainID)
	for _, source := range sources {
		fmt.Printf("  %s\n", color.YellowString(source))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("\nTotal: %d sources\n\n", len(sources))
}
