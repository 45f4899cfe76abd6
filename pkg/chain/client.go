package chain

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"zeroswap/pkg/errs"
)

// Minimal ERC-20 surface: reads used before a swap plus the approval write.
const erc20ABI = `[
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// maxUint256 is the maximum value representable by a uint256 allowance.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Client wraps a signing account and an RPC connection to one EVM chain.
type Client struct {
	eth        *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	erc20      abi.ABI
}

// TxStatus summarizes a transaction and its receipt, if mined.
type TxStatus struct {
	Hash        string
	To          string
	Nonce       uint64
	Value       string
	Pending     bool
	Success     bool
	BlockNumber uint64
	GasUsed     uint64
}

// NewClient connects to the RPC endpoint and derives the signing account.
func NewClient(rpcURL, privateKeyHex string, chainID int64) (*Client, error) {
	if rpcURL == "" {
		return nil, errs.New(errs.KindConfig, "RPC URL is required")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "invalid private key", err)
	}

	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "failed to connect to RPC endpoint", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "parse ERC20 ABI", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errs.New(errs.KindInternal, "failed to derive public key")
	}

	return &Client{
		eth:        eth,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
		chainID:    big.NewInt(chainID),
		erc20:      parsedABI,
	}, nil
}

// Address returns the signing account's address.
func (c *Client) Address() common.Address {
	return c.address
}

// TokenDecimals reads the decimals() value of an ERC-20 token.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := c.erc20.Pack("decimals")
	if err != nil {
		return 0, errs.Wrap(errs.KindInternal, "pack decimals call", err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, errs.Wrap(errs.KindChain, fmt.Sprintf("failed to read decimals of %s", token.Hex()), err)
	}

	values, err := c.erc20.Unpack("decimals", result)
	if err != nil || len(values) != 1 {
		return 0, errs.Wrap(errs.KindChain, "unexpected decimals return data", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, errs.New(errs.KindChain, "decimals return value is not uint8")
	}
	return decimals, nil
}

// Allowance reads the current ERC-20 approval from the signing account to a
// spender.
func (c *Client) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	data, err := c.erc20.Pack("allowance", c.address, spender)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "pack allowance call", err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "failed to read allowance", err)
	}
	return new(big.Int).SetBytes(result), nil
}

// ApproveUnlimited grants the spender the maximum representable allowance on
// the token. The call is simulated first, then submitted, and the method
// blocks until the approval transaction is mined.
func (c *Client) ApproveUnlimited(ctx context.Context, token, spender common.Address) (*ethtypes.Receipt, error) {
	data, err := c.erc20.Pack("approve", spender, maxUint256)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "pack approve call", err)
	}

	// Simulate before spending gas on a transaction that would revert.
	msg := ethereum.CallMsg{From: c.address, To: &token, Data: data}
	if _, err := c.eth.CallContract(ctx, msg, nil); err != nil {
		return nil, errs.Wrap(errs.KindChain, "approve simulation reverted", err)
	}

	tx, err := c.submit(ctx, token, big.NewInt(0), data)
	if err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "waiting for approval receipt", err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, errs.New(errs.KindChain, fmt.Sprintf("approval transaction %s reverted", tx.Hash().Hex()))
	}
	return receipt, nil
}

// SignTypedData signs an EIP-712 typed-data payload with the account key.
// The recovery byte is normalized to 27/28 as on-chain verifiers expect.
func (c *Client) SignTypedData(payload []byte) ([]byte, error) {
	var typedData apitypes.TypedData
	if err := json.Unmarshal(payload, &typedData); err != nil {
		return nil, errs.Wrap(errs.KindChain, "decode EIP-712 payload", err)
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "hash EIP-712 payload", err)
	}

	signature, err := crypto.Sign(hash, c.privateKey)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "sign EIP-712 payload", err)
	}
	signature[64] += 27
	return signature, nil
}

// PendingNonce returns the account's next nonce including pending txs.
func (c *Client) PendingNonce(ctx context.Context) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.address)
	if err != nil {
		return 0, errs.Wrap(errs.KindChain, "failed to get nonce", err)
	}
	return nonce, nil
}

// SendTransaction signs and broadcasts a transaction carrying the given
// calldata and returns its hash without waiting for it to be mined.
func (c *Client) SendTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	tx, err := c.submit(ctx, to, value, data)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (c *Client) submit(ctx context.Context, to common.Address, value *big.Int, data []byte) (*ethtypes.Transaction, error) {
	nonce, err := c.PendingNonce(ctx)
	if err != nil {
		return nil, err
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "failed to get gas price", err)
	}

	msg := ethereum.CallMsg{From: c.address, To: &to, Value: value, Data: data}
	gasLimit, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "gas estimation failed", err)
	}
	gasLimit = gasLimit * 120 / 100 // headroom over the estimate

	tx := ethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "failed to sign transaction", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return nil, errs.Wrap(errs.KindChain, "failed to send transaction", err)
	}
	return signedTx, nil
}

// TransactionStatus looks up a transaction and its receipt.
func (c *Client) TransactionStatus(ctx context.Context, hash common.Hash) (*TxStatus, error) {
	tx, isPending, err := c.eth.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, errs.Wrap(errs.KindChain, "failed to get transaction", err)
	}

	status := &TxStatus{
		Hash:    tx.Hash().Hex(),
		Nonce:   tx.Nonce(),
		Value:   tx.Value().String(),
		Pending: isPending,
	}
	if tx.To() != nil {
		status.To = tx.To().Hex()
	}

	if !isPending {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, errs.Wrap(errs.KindChain, "failed to get transaction receipt", err)
		}
		status.Success = receipt.Status == ethtypes.ReceiptStatusSuccessful
		status.BlockNumber = receipt.BlockNumber.Uint64()
		status.GasUsed = receipt.GasUsed
	}
	return status, nil
}

// Close closes the RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}
