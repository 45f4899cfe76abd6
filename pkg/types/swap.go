package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// SwapRequest describes one fixed-amount token swap for a single taker.
type SwapRequest struct {
	ChainID          int64
	SellToken        string
	BuyToken         string
	SellAmount       string // integer, smallest token unit
	Taker            string
	AffiliateAddress string
	AffiliateFeeBps  string
}

// Validate checks that the request carries everything the aggregator needs
func (r *SwapRequest) Validate() error {
	if r.ChainID <= 0 {
		return fmt.Errorf("chain id must be positive")
	}
	if r.SellToken == "" || r.BuyToken == "" {
		return fmt.Errorf("sell and buy token addresses are required")
	}
	if r.Taker == "" {
		return fmt.Errorf("taker address is required")
	}
	amount, ok := new(big.Int).SetString(r.SellAmount, 10)
	if !ok || amount.Sign() <= 0 {
		return fmt.Errorf("sell amount must be a positive integer, got %q", r.SellAmount)
	}
	return nil
}

// Fill is one leg of the aggregator's route, attributed to a liquidity source.
type Fill struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Source        string `json:"source"`
	ProportionBps string `json:"proportionBps"`
}

// Percent converts the fill's basis-point proportion to a percentage.
func (f Fill) Percent() (float64, error) {
	bps, err := ParseBps(f.ProportionBps)
	if err != nil {
		return 0, err
	}
	return float64(bps) / 100, nil
}

// Route is the aggregator's chosen path across liquidity sources.
type Route struct {
	Fills []Fill `json:"fills"`
}

// AllowanceIssue reports that the taker's current approval to the spender
// does not cover the sell amount.
type AllowanceIssue struct {
	Actual  string `json:"actual"`
	Spender string `json:"spender"`
}

// Issues carries server-declared blockers for the swap.
type Issues struct {
	Allowance *AllowanceIssue `json:"allowance"`
}

// PriceQuote is the aggregator's indicative price response.
type PriceQuote struct {
	SellAmount string `json:"sellAmount"`
	BuyAmount  string `json:"buyAmount"`
	Route      Route  `json:"route"`
	Issues     Issues `json:"issues"`
}

// TxData is the ready-to-submit transaction returned with a firm quote.
type TxData struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
}

// Permit2 carries the EIP-712 payload the taker must sign. The typed data is
// kept as raw JSON and decoded at signing time.
type Permit2 struct {
	EIP712 json.RawMessage `json:"eip712"`
}

// TokenTax reports transfer taxes for one side of the pair, in basis points.
type TokenTax struct {
	BuyTaxBps  string `json:"buyTaxBps"`
	SellTaxBps string `json:"sellTaxBps"`
}

// TokenMetadata carries per-token tax disclosure from the aggregator.
type TokenMetadata struct {
	BuyToken  TokenTax `json:"buyToken"`
	SellToken TokenTax `json:"sellToken"`
}

// FirmQuote is the aggregator's binding quote with transaction data.
type FirmQuote struct {
	SellAmount    string        `json:"sellAmount"`
	BuyAmount     string        `json:"buyAmount"`
	Transaction   TxData        `json:"transaction"`
	Permit2       *Permit2      `json:"permit2"`
	TokenMetadata TokenMetadata `json:"tokenMetadata"`
}

// HasPermit2 reports whether the quote requires a typed-data signature.
func (q *FirmQuote) HasPermit2() bool {
	return q.Permit2 != nil && len(q.Permit2.EIP712) > 0 && string(q.Permit2.EIP712) != "null"
}

// SourcesResponse lists the liquidity sources supported on a chain.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// ParseBps parses a basis-point value as the aggregator serializes it: a
// decimal string. Empty values count as zero.
func ParseBps(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	bps, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid basis points value %q: %w", s, err)
	}
	return bps, nil
}
