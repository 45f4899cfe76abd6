package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"zeroswap/pkg/errs"
	"zeroswap/pkg/types"
)

const (
	defaultBaseURL = "https://api.0x.org"
	apiVersion     = "v2"

	pricePath   = "/swap/permit2/price"
	quotePath   = "/swap/permit2/quote"
	sourcesPath = "/swap/v1/sources"
)

// ZeroExClient talks to the 0x swap aggregation API.
type ZeroExClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewZeroExClient creates a new aggregator client. An empty baseURL selects
// the production endpoint.
func NewZeroExClient(apiKey, baseURL string) *ZeroExClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ZeroExClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// GetPrice fetches an indicative price for the swap.
func (c *ZeroExClient) GetPrice(ctx context.Context, req *types.SwapRequest) (*types.PriceQuote, error) {
	var price types.PriceQuote
	if err := c.get(ctx, pricePath, swapQuery(req), &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// GetQuote fetches a firm quote with ready-to-submit transaction data. The
// query parameters are identical to the price call.
func (c *ZeroExClient) GetQuote(ctx context.Context, req *types.SwapRequest) (*types.FirmQuote, error) {
	var quote types.FirmQuote
	if err := c.get(ctx, quotePath, swapQuery(req), &quote); err != nil {
		return nil, err
	}
	if quote.Transaction.To == "" {
		return nil, errs.New(errs.KindAggregator, "quote response missing transaction data")
	}
	return &quote, nil
}

// GetSources lists the liquidity sources supported on a chain, in the order
// the aggregator returns them.
func (c *ZeroExClient) GetSources(ctx context.Context, chainID int64) ([]string, error) {
	query := url.Values{}
	query.Set("chainId", strconv.FormatInt(chainID, 10))

	var resp types.SourcesResponse
	if err := c.get(ctx, sourcesPath, query, &resp); err != nil {
		return nil, err
	}
	return resp.Sources, nil
}

func swapQuery(req *types.SwapRequest) url.Values {
	query := url.Values{}
	query.Set("chainId", strconv.FormatInt(req.ChainID, 10))
	query.Set("sellToken", req.SellToken)
	query.Set("buyToken", req.BuyToken)
	query.Set("sellAmount", req.SellAmount)
	query.Set("taker", req.Taker)
	if req.AffiliateAddress != "" {
		query.Set("affiliateAddress", req.AffiliateAddress)
		query.Set("affiliateFeeBps", req.AffiliateFeeBps)
	}
	return query
}

func (c *ZeroExClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "build aggregator request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("0x-api-key", c.apiKey)
	req.Header.Set("0x-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindAggregator, "aggregator request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.KindAggregator, "read aggregator response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.New(errs.KindAggregator, apiErrorMessage(resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errs.Wrap(errs.KindAggregator, "decode aggregator response", err)
	}
	return nil
}

// apiErrorMessage extracts the server's error message from a non-success
// response body when it is parseable, falling back to the raw body.
func apiErrorMessage(status int, body []byte) string {
	var errorResp map[string]interface{}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Sprintf("API error (status %d): %s", status, message)
		}
		if reason, ok := errorResp["reason"].(string); ok {
			return fmt.Sprintf("API error (status %d): %s", status, reason)
		}
	}
	if len(body) > 0 {
		return fmt.Sprintf("API error (status %d): %s", status, string(body))
	}
	return fmt.Sprintf("API returned status code %d", status)
}
