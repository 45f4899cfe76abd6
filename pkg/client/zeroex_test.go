package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeroswap/pkg/errs"
	"zeroswap/pkg/types"
)

func testRequest() *types.SwapRequest {
	return &types.SwapRequest{
		ChainID:    1,
		SellToken:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		BuyToken:   "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		SellAmount: "100000000000000000",
		Taker:      "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	}
}

func TestGetPriceSendsQueryAndHeaders(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		assert.Equal(t, "test-key", r.Header.Get("0x-api-key"))
		assert.Equal(t, "v2", r.Header.Get("0x-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Write([]byte(`{
			"sellAmount": "100000000000000000",
			"buyAmount": "250000000",
			"route": {"fills": [
				{"source": "Uniswap", "proportionBps": "7500"},
				{"source": "Curve", "proportionBps": "2500"}
			]},
			"issues": {"allowance": {"actual": "0", "spender": "0x000000000022D473030F116dDEE9F6B43aC78BA3"}}
		}`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	price, err := c.GetPrice(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "/swap/permit2/price", gotPath)
	assert.Equal(t, "1", gotQuery["chainId"])
	assert.Equal(t, "100000000000000000", gotQuery["sellAmount"])
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", gotQuery["sellToken"])
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", gotQuery["buyToken"])
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", gotQuery["taker"])
	_, hasAffiliate := gotQuery["affiliateAddress"]
	assert.False(t, hasAffiliate)

	assert.Equal(t, "250000000", price.BuyAmount)
	require.Len(t, price.Route.Fills, 2)
	assert.Equal(t, "Uniswap", price.Route.Fills[0].Source)
	pct, err := price.Route.Fills[0].Percent()
	require.NoError(t, err)
	assert.Equal(t, 75.0, pct)
	require.NotNil(t, price.Issues.Allowance)
	assert.Equal(t, "0x000000000022D473030F116dDEE9F6B43aC78BA3", price.Issues.Allowance.Spender)
}

func TestGetPriceIncludesAffiliateParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0x1111111111111111111111111111111111111111", r.URL.Query().Get("affiliateAddress"))
		assert.Equal(t, "25", r.URL.Query().Get("affiliateFeeBps"))
		w.Write([]byte(`{"buyAmount": "1"}`))
	}))
	defer server.Close()

	req := testRequest()
	req.AffiliateAddress = "0x1111111111111111111111111111111111111111"
	req.AffiliateFeeBps = "25"

	c := NewZeroExClient("test-key", server.URL)
	_, err := c.GetPrice(context.Background(), req)
	require.NoError(t, err)
}

func TestGetPriceServerErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "insufficient liquidity"}`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	_, err := c.GetPrice(context.Background(), testRequest())
	require.Error(t, err)

	assert.Equal(t, errs.KindAggregator, errs.KindOf(err))
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "insufficient liquidity")
}

func TestGetPriceRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	_, err := c.GetPrice(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, errs.KindAggregator, errs.KindOf(err))
}

func TestGetQuoteParsesPermit2AndTaxes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/permit2/quote", r.URL.Path)
		w.Write([]byte(`{
			"buyAmount": "250000000",
			"transaction": {
				"to": "0x0000000000001fF3684f28c67538d4D072C22734",
				"data": "0xabcdef",
				"value": "0",
				"gas": "300000"
			},
			"permit2": {"eip712": {"primaryType": "PermitTransferFrom", "domain": {"name": "Permit2"}}},
			"tokenMetadata": {
				"buyToken": {"buyTaxBps": "0"},
				"sellToken": {"sellTaxBps": "50"}
			}
		}`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	quote, err := c.GetQuote(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "0x0000000000001fF3684f28c67538d4D072C22734", quote.Transaction.To)
	assert.Equal(t, "0xabcdef", quote.Transaction.Data)
	require.True(t, quote.HasPermit2())
	assert.Contains(t, string(quote.Permit2.EIP712), "PermitTransferFrom")
	assert.Equal(t, "50", quote.TokenMetadata.SellToken.SellTaxBps)
}

func TestGetQuoteWithoutPermit2(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"buyAmount": "1",
			"transaction": {"to": "0x0000000000001fF3684f28c67538d4D072C22734", "data": "0x"}
		}`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	quote, err := c.GetQuote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, quote.HasPermit2())
}

func TestGetQuoteMissingTransactionIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"buyAmount": "1"}`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	_, err := c.GetQuote(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, errs.KindAggregator, errs.KindOf(err))
}

func TestGetSourcesPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/v1/sources", r.URL.Path)
		assert.Equal(t, "8453", r.URL.Query().Get("chainId"))
		w.Write([]byte(`{"sources": ["Uniswap_V3", "Curve", "Aerodrome", "Balancer_V2"]}`))
	}))
	defer server.Close()

	c := NewZeroExClient("test-key", server.URL)
	sources, err := c.GetSources(context.Background(), 8453)
	require.NoError(t, err)

	assert.Equal(t, []string{"Uniswap_V3", "Curve", "Aerodrome", "Balancer_V2"}, sources)
}

func TestGetSourcesTransportErrorIsAggregatorKind(t *testing.T) {
	c := NewZeroExClient("test-key", "http://127.0.0.1:1")
	_, err := c.GetSources(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, errs.KindAggregator, errs.KindOf(err))
}
