package parser

import (
	"fmt"
	"regexp"
	"strings"

	"zeroswap/pkg/errs"
)

// Command is a parsed swap instruction before token resolution.
type Command struct {
	Amount    string
	SellToken string
	BuyToken  string
}

// Pattern: <amount> <sell_token> TO <buy_token>
// Matches: "0.1 WETH TO USDC", "100 USDC TO DAI"
var commandPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 0.1 WETH to USDC"
//   - "100 USDC to DAI"
func ParseSwapCommand(command string) (*Command, error) {
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimPrefix(command, "SWAP ")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, errs.New(errs.KindUsage, "invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 0.1 WETH to USDC')")
	}

	cmd := &Command{
		Amount:    matches[1],
		SellToken: matches[2],
		BuyToken:  matches[3],
	}
	if cmd.SellToken == cmd.BuyToken {
		return nil, errs.New(errs.KindUsage, fmt.Sprintf("sell and buy token must differ, got %s on both sides", cmd.SellToken))
	}
	return cmd, nil
}
