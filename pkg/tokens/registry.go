package tokens

import (
	"fmt"
	"strings"

	"zeroswap/pkg/errs"
)

// Token is a known ERC-20 on a specific chain. Decimals is a hint only; the
// swap path confirms it on-chain before converting amounts.
type Token struct {
	Symbol   string
	Address  string
	Decimals int
}

var registries = map[int64]map[string]Token{
	// Ethereum mainnet
	1: {
		"WETH": {Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Decimals: 18},
		"USDC": {Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
		"USDT": {Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6},
		"DAI":  {Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Decimals: 18},
		"WBTC": {Symbol: "WBTC", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Decimals: 8},
	},
	// Base
	8453: {
		"WETH": {Symbol: "WETH", Address: "0x4200000000000000000000000000000000000006", Decimals: 18},
		"USDC": {Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
		"DAI":  {Symbol: "DAI", Address: "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb", Decimals: 18},
	},
}

// Lookup resolves a token symbol on the given chain.
func Lookup(chainID int64, symbol string) (Token, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	registry, ok := registries[chainID]
	if !ok {
		return Token{}, errs.New(errs.KindUsage, fmt.Sprintf("no token registry for chain %d; pass token addresses directly", chainID))
	}
	token, ok := registry[symbol]
	if !ok {
		return Token{}, errs.New(errs.KindUsage, fmt.Sprintf("token %q not known on chain %d", symbol, chainID))
	}
	return token, nil
}

// Resolve accepts either a known symbol or a raw 0x-prefixed address.
// Addresses pass through untouched with no decimals hint.
func Resolve(chainID int64, symbolOrAddress string) (Token, error) {
	if strings.HasPrefix(symbolOrAddress, "0x") || strings.HasPrefix(symbolOrAddress, "0X") {
		if len(symbolOrAddress) != 42 {
			return Token{}, errs.New(errs.KindUsage, fmt.Sprintf("invalid token address %q", symbolOrAddress))
		}
		return Token{Symbol: symbolOrAddress, Address: symbolOrAddress, Decimals: -1}, nil
	}
	return Lookup(chainID, symbolOrAddress)
}

// Register adds or overrides a token entry, used for config-provided tokens.
func Register(chainID int64, token Token) {
	registry, ok := registries[chainID]
	if !ok {
		registry = make(map[string]Token)
		registries[chainID] = registry
	}
	registry[strings.ToUpper(token.Symbol)] = token
}
