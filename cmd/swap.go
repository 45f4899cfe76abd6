package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zeroswap/config"
	"zeroswap/pkg/amount"
	"zeroswap/pkg/chain"
	"zeroswap/pkg/client"
	"zeroswap/pkg/parser"
	"zeroswap/pkg/swap"
	"zeroswap/pkg/tokens"
	"zeroswap/pkg/types"
)

var (
	noConfirm    bool
	affiliate    string
	affiliateBps string
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <sell-token> to <buy-token>",
	Short: "Execute a token swap through the 0x aggregation API",
	Long: `Swap a fixed amount of one ERC-20 token for another on the configured
chain. The aggregator picks the route; zeroswap handles allowance approval,
permit2 signing, and on-chain submission.

Tokens can be given as known symbols (WETH, USDC, DAI, ...) or as raw
0x-prefixed contract addresses.

Examples:
  zeroswap swap 0.1 WETH to USDC
  zeroswap swap 250 USDC to DAI --yes
  zeroswap swap 1 0xC02a...6Cc2 to 0xA0b8...eB48`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().StringVar(&affiliate, "affiliate", "", "Affiliate fee recipient address (optional)")
	swapCmd.Flags().StringVar(&affiliateBps, "affiliate-fee-bps", "0", "Affiliate fee in basis points")
}

func runSwap(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	// Parse the command
	commandStr := strings.Join(args, " ")
	parsed, err := parser.ParseSwapCommand(commandStr)
	if err != nil {
		exitOnError(err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		exitOnError(err)
	}
	if affiliate != "" {
		cfg.AffiliateAddress = affiliate
		cfg.AffiliateFeeBps = affiliateBps
	}

	// Connect to the chain and derive the taker account
	chainClient, err := chain.NewClient(cfg.RPCURL, cfg.PrivateKey, cfg.ChainID)
	if err != nil {
		exitOnError(err)
	}
	defer chainClient.Close()

	sellToken, err := tokens.Resolve(cfg.ChainID, parsed.SellToken)
	if err != nil {
		exitOnError(err)
	}
	buyToken, err := tokens.Resolve(cfg.ChainID, parsed.BuyToken)
	if err != nil {
		exitOnError(err)
	}

	// Confirm decimals on-chain before converting the amount
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Reading token decimals..."
	s.Start()
	decimals, err := chainClient.TokenDecimals(ctx, common.HexToAddress(sellToken.Address))
	s.Stop()
	if err != nil {
		exitOnError(err)
	}

	if verbose && sellToken.Decimals >= 0 && int(decimals) != sellToken.Decimals {
		fmt.Printf("\nDebug: registry lists %d decimals for %s, chain reports %d\n",
			sellToken.Decimals, sellToken.Symbol, decimals)
	}

	sellAmount, err := amount.ToBaseUnits(parsed.Amount, int(decimals))
	if err != nil {
		exitOnError(err)
	}

	req := &types.SwapRequest{
		ChainID:          cfg.ChainID,
		SellToken:        sellToken.Address,
		BuyToken:         buyToken.Address,
		SellAmount:       sellAmount,
		Taker:            chainClient.Address().Hex(),
		AffiliateAddress: cfg.AffiliateAddress,
		AffiliateFeeBps:  cfg.AffiliateFeeBps,
	}

	displaySwapIntent(parsed, req)

	if !noConfirm {
		if !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	apiClient := client.NewZeroExClient(cfg.APIKey, cfg.BaseURL)
	orchestrator := swap.New(apiClient, chainClient, os.Stdout)

	fmt.Println()
	result, err := orchestrator.ExecuteSwap(ctx, req)
	if err != nil {
		exitOnError(err)
	}

	if !result.Submitted {
		color.Yellow("\nNo permit2 payload in the quote; no transaction was submitted.")
		return
	}

	color.Green("\n✓ Swap submitted!")
	fmt.Printf("  Transaction: %s\n", color.CyanString(result.TxHash.Hex()))
	fmt.Println("\nYou can check the transaction status using:")
	color.Cyan("  zeroswap status %s\n", result.TxHash.Hex())
}

func displaySwapIntent(parsed *parser.Command, req *types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      SWAP REQUEST")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Chain ID:     %d\n", req.ChainID)
	fmt.Printf("  Sell:         %s %s (%s)\n", parsed.Amount, color.YellowString(parsed.SellToken), req.SellToken)
	fmt.Printf("  Buy:          %s (%s)\n", color.YellowString(parsed.BuyToken), req.BuyToken)
	fmt.Printf("  Sell amount:  %s base units\n", req.SellAmount)
	fmt.Printf("  Taker:        %s\n", color.CyanString(req.Taker))
	if req.AffiliateAddress != "" {
		fmt.Printf("  Affiliate:    %s (%s bps)\n", req.AffiliateAddress, req.AffiliateFeeBps)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
