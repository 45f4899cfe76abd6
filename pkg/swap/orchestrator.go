package swap

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"zeroswap/pkg/errs"
	"zeroswap/pkg/types"
)

// Aggregator is the slice of the swap API the orchestrator consumes.
type Aggregator interface {
	GetPrice(ctx context.Context, req *types.SwapRequest) (*types.PriceQuote, error)
	GetQuote(ctx context.Context, req *types.SwapRequest) (*types.FirmQuote, error)
}

// Chain is the slice of the chain client the orchestrator consumes.
type Chain interface {
	ApproveUnlimited(ctx context.Context, token, spender common.Address) (*ethtypes.Receipt, error)
	SignTypedData(payload []byte) ([]byte, error)
	SendTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error)
}

// Result is the outcome of one swap execution. Submitted is false when the
// firm quote carried no permit2 payload and nothing was broadcast.
type Result struct {
	Submitted bool
	TxHash    common.Hash
}

// Orchestrator drives one swap from intent to broadcast. It branches only on
// server-declared conditions and never re-derives what the aggregator
// already computed.
type Orchestrator struct {
	agg   Aggregator
	chain Chain
	out   io.Writer
}

// New creates an orchestrator. Progress lines are written to out; a nil out
// discards them.
func New(agg Aggregator, chain Chain, out io.Writer) *Orchestrator {
	if out == nil {
		out = io.Discard
	}
	return &Orchestrator{agg: agg, chain: chain, out: out}
}

// ExecuteSwap runs the full sequence: price discovery, allowance resolution,
// firm quote, tax disclosure, permit signing, submission. Stages run strictly
// in order; the approval receipt is observed before the swap nonce is
// fetched. The first failure aborts the remaining stages.
func (o *Orchestrator) ExecuteSwap(ctx context.Context, req *types.SwapRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, errs.Wrap(errs.KindUsage, "invalid swap request", err)
	}

	// Stage 1: price discovery.
	price, err := o.agg.GetPrice(ctx, req)
	if err != nil {
		return nil, stageErr(errs.KindAggregator, "price discovery failed", err)
	}
	fmt.Fprintf(o.out, "Price fetched: sell %s for ~%s\n", price.SellAmount, price.BuyAmount)
	o.reportRoute(price.Route.Fills)

	// Stage 2: allowance resolution. Skipped entirely unless the aggregator
	// declares the current approval insufficient.
	if price.Issues.Allowance != nil {
		spender := common.HexToAddress(price.Issues.Allowance.Spender)
		sellToken := common.HexToAddress(req.SellToken)
		fmt.Fprintf(o.out, "Allowance insufficient (current %s); approving spender %s\n",
			price.Issues.Allowance.Actual, spender.Hex())

		receipt, err := o.chain.ApproveUnlimited(ctx, sellToken, spender)
		if err != nil {
			return nil, stageErr(errs.KindChain, "allowance approval failed", err)
		}
		fmt.Fprintf(o.out, "Approval confirmed in block %d (tx %s)\n",
			receipt.BlockNumber.Uint64(), receipt.TxHash.Hex())
	}

	// Stage 3: firm quote, same parameters against the quote endpoint.
	quote, err := o.agg.GetQuote(ctx, req)
	if err != nil {
		return nil, stageErr(errs.KindAggregator, "quote retrieval failed", err)
	}
	fmt.Fprintf(o.out, "Quote fetched: buy amount %s\n", quote.BuyAmount)

	// Stage 4: tax disclosure. Informational only, never blocks the swap.
	o.reportTax("Buy token buy tax", quote.TokenMetadata.BuyToken.BuyTaxBps)
	o.reportTax("Sell token sell tax", quote.TokenMetadata.SellToken.SellTaxBps)

	// Stage 5: permit signing and calldata assembly.
	if !quote.HasPermit2() {
		fmt.Fprintf(o.out, "Quote carries no permit2 payload; nothing submitted\n")
		return &Result{Submitted: false}, nil
	}

	signature, err := o.chain.SignTypedData(quote.Permit2.EIP712)
	if err != nil {
		return nil, stageErr(errs.KindChain, "permit2 signing failed", err)
	}

	data, err := AssembleCalldata(quote.Transaction.Data, signature)
	if err != nil {
		return nil, err
	}

	// Stage 6: submission.
	to := common.HexToAddress(quote.Transaction.To)
	value, err := parseValue(quote.Transaction.Value)
	if err != nil {
		return nil, err
	}

	hash, err := o.chain.SendTransaction(ctx, to, value, data)
	if err != nil {
		return nil, stageErr(errs.KindChain, "swap submission failed", err)
	}
	fmt.Fprintf(o.out, "Swap transaction submitted: %s\n", hash.Hex())

	return &Result{Submitted: true, TxHash: hash}, nil
}

// AssembleCalldata appends a length-prefixed signature to the quote's
// transaction data: calldata || uint256(len(sig)) || sig. This is the exact
// layout the settlement contract expects; any reordering reverts on-chain.
func AssembleCalldata(dataHex string, signature []byte) ([]byte, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, errs.Wrap(errs.KindAggregator, "quote transaction data is not valid hex", err)
	}

	length := make([]byte, 32)
	big.NewInt(int64(len(signature))).FillBytes(length)

	out := make([]byte, 0, len(data)+len(length)+len(signature))
	out = append(out, data...)
	out = append(out, length...)
	out = append(out, signature...)
	return out, nil
}

func (o *Orchestrator) reportRoute(fills []types.Fill) {
	if len(fills) == 0 {
		return
	}
	fmt.Fprintf(o.out, "Liquidity sources:\n")
	for _, fill := range fills {
		pct, err := fill.Percent()
		if err != nil {
			fmt.Fprintf(o.out, "  %s: %s bps\n", fill.Source, fill.ProportionBps)
			continue
		}
		fmt.Fprintf(o.out, "  %s: %s%%\n", fill.Source, formatPercent(pct))
	}
}

func (o *Orchestrator) reportTax(label, bpsValue string) {
	bps, err := types.ParseBps(bpsValue)
	if err != nil || bps == 0 {
		return
	}
	fmt.Fprintf(o.out, "%s: %s%%\n", label, formatPercent(float64(bps)/100))
}

func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

func parseValue(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errs.New(errs.KindAggregator, fmt.Sprintf("quote transaction value %q is not a valid integer", value))
	}
	return parsed, nil
}

// stageErr keeps already-typed errors intact and assigns the stage's kind to
// anything untyped that bubbled up from a collaborator.
func stageErr(kind errs.Kind, message string, err error) error {
	if errs.KindOf(err) != errs.KindInternal {
		return err
	}
	return errs.Wrap(kind, message, err)
}
