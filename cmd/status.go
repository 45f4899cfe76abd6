package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zeroswap/config"
	"zeroswap/pkg/chain"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a submitted transaction",
	Long: `Look up a transaction and its receipt on the configured chain.

Examples:
  zeroswap status 0x1234...abcd
  zeroswap status 0x1234...abcd --watch
  zeroswap status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	txHash := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		exitOnError(err)
	}

	chainClient, err := chain.NewClient(cfg.RPCURL, cfg.PrivateKey, cfg.ChainID)
	if err != nil {
		exitOnError(err)
	}
	defer chainClient.Close()

	if watchStatus {
		watchTxStatus(chainClient, txHash, jsonOutput)
	} else {
		checkTxStatus(chainClient, txHash, jsonOutput)
	}
}

func checkTxStatus(chainClient *chain.Client, txHash string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	status, err := chainClient.TransactionStatus(context.Background(), common.HexToHash(txHash))
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		exitOnError(err)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTxStatus(status)
	}
}

func watchTxStatus(chainClient *chain.Client, txHash string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		return
	}

	fmt.Printf("\nWatching transaction %s\n", color.CyanString(txHash))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	checkAndDisplayStatus(chainClient, txHash)

	for range ticker.C {
		checkAndDisplayStatus(chainClient, txHash)
	}
}

func checkAndDisplayStatus(chainClient *chain.Client, txHash string) {
	status, err := chainClient.TransactionStatus(context.Background(), common.HexToHash(txHash))
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	displayTxStatus(status)
}

func displayTxStatus(status *chain.TxStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Hash:    %s\n", color.CyanString(status.Hash))
	fmt.Printf("  To:      %s\n", status.To)
	fmt.Printf("  Nonce:   %d\n", status.Nonce)
	fmt.Printf("  Value:   %s wei\n", status.Value)
	fmt.Printf("  Status:  %s\n", coloredTxState(status))

	if !status.Pending {
		fmt.Printf("  Block:   %d\n", status.BlockNumber)
		fmt.Printf("  Gas:     %d used\n", status.GasUsed)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredTxState(status *chain.TxStatus) string {
	switch {
	case status.Pending:
		return color.YellowString("PENDING")
	case status.Success:
		return color.GreenString("SUCCESS")
	default:
		return color.RedString("REVERTED")
	}
}
