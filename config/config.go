package config

import (
	"fmt"

	"github.com/spf13/viper"

	"zeroswap/pkg/errs"
)

// Config holds the application configuration
type Config struct {
	PrivateKey       string
	APIKey           string
	RPCURL           string
	BaseURL          string
	ChainID          int64
	AffiliateAddress string
	AffiliateFeeBps  string
}

// Load reads configuration from environment variables and an optional
// .zeroswap.yaml config file. The three secrets (private key, API key, RPC
// URL) are required; a missing one aborts before any network activity.
func Load() (*Config, error) {
	viper.SetConfigName(".zeroswap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("base_url", "https://api.0x.org")
	viper.SetDefault("chain_id", 1)

	viper.SetEnvPrefix("ZEROSWAP")
	viper.AutomaticEnv()

	// Config file is optional; env vars alone are enough.
	_ = viper.ReadInConfig()

	cfg := &Config{
		PrivateKey:       viper.GetString("private_key"),
		APIKey:           viper.GetString("api_key"),
		RPCURL:           viper.GetString("rpc_url"),
		BaseURL:          viper.GetString("base_url"),
		ChainID:          viper.GetInt64("chain_id"),
		AffiliateAddress: viper.GetString("affiliate_address"),
		AffiliateFeeBps:  viper.GetString("affiliate_fee_bps"),
	}

	for envVar, value := range map[string]string{
		"ZEROSWAP_PRIVATE_KEY": cfg.PrivateKey,
		"ZEROSWAP_API_KEY":     cfg.APIKey,
		"ZEROSWAP_RPC_URL":     cfg.RPCURL,
	} {
		if value == "" {
			return nil, errs.New(errs.KindConfig,
				fmt.Sprintf("missing required setting. Set the %s environment variable or add it to .zeroswap.yaml", envVar))
		}
	}

	return cfg, nil
}
