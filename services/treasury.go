// services/treasury.go
package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// PointsToEthRate: 1 point = 0.00001 Sepolia ETH.
const PointsToEthRate = 0.00001

// weiPerPoint is the same rate in integer wei (0.00001 ETH = 1e13 wei), so
// conversions never touch floating point.
var weiPerPoint = big.NewInt(10_000_000_000_000)

var sepoliaChainID = big.NewInt(11155111)

// Public Sepolia RPC endpoints, tried in order until one answers.
var sepoliaRPCURLs = []string{
	"https://ethereum-sepolia-rpc.publicnode.com",
	"https://rpc.sepolia.org",
	"https://sepolia.gateway.tenderly.co",
	"https://rpc.ankr.com/eth_sepolia",
	"https://ethereum-sepolia.blockpi.network/v1/rpc/public",
}

// TransferResult is what the payment rail reports back on success.
type TransferResult struct {
	TxHash    string `json:"tx_hash"`
	AmountEth string `json:"amount_eth"`
}

// TokenSender is the payment-rail collaborator: points in, a transaction
// identifier out.
type TokenSender interface {
	SendTokens(ctx context.Context, recipient string, points int) (*TransferResult, error)
}

// PointsToWei converts a point amount to wei at the fixed rate.
func PointsToWei(points int) *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(points)), weiPerPoint)
}

// EthAmountForPoints renders the ETH amount a point balance converts to.
func EthAmountForPoints(points int) string {
	return fmt.Sprintf("%.6f", float64(points)*PointsToEthRate)
}

// TransactionURL returns the Sepolia explorer link for a transaction hash.
func TransactionURL(txHash string) string {
	return fmt.Sprintf("https://sepolia.etherscan.io/tx/%s", txHash)
}

// SepoliaTreasury sends testnet ETH from the treasury wallet. It implements
// TokenSender.
type SepoliaTreasury struct {
	rpcURLs []string
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address
}

func NewSepoliaTreasury() (*SepoliaTreasury, error) {
	keyHex := strings.TrimPrefix(os.Getenv("TREASURY_PRIVATE_KEY"), "0x")
	if keyHex == "" {
		return nil, fmt.Errorf("TREASURY_PRIVATE_KEY environment variable not set")
	}
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury private key: %w", err)
	}

	return &SepoliaTreasury{
		rpcURLs: sepoliaRPCURLs,
		chainID: sepoliaChainID,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// dial tries each configured RPC endpoint until one responds with the right
// chain.
func (t *SepoliaTreasury) dial(ctx context.Context) (*ethclient.Client, error) {
	for _, url := range t.rpcURLs {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			log.Printf("⚠️  RPC %s unreachable, trying next: %v", url, err)
			continue
		}
		chainID, err := client.ChainID(ctx)
		if err != nil || chainID.Cmp(t.chainID) != 0 {
			client.Close()
			log.Printf("⚠️  RPC %s failed chain check, trying next", url)
			continue
		}
		return client, nil
	}
	return nil, fmt.Errorf("%w: all RPC endpoints failed", ErrPaymentRail)
}

// SendTokens converts points to ETH at the fixed rate and pays the recipient
// from the treasury wallet. Blocking and never retried: a failure surfaces as
// a failed attempt the user restarts from scratch.
func (t *SepoliaTreasury) SendTokens(ctx context.Context, recipient string, points int) (*TransferResult, error) {
	if !common.IsHexAddress(recipient) {
		return nil, ErrInvalidAddress
	}
	if points <= 0 {
		return nil, fmt.Errorf("point amount must be positive, got %d", points)
	}

	client, err := t.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	wei := PointsToWei(points)

	balance, err := client.BalanceAt(ctx, t.from, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: balance check failed: %v", ErrPaymentRail, err)
	}
	if balance.Cmp(wei) < 0 {
		return nil, fmt.Errorf("%w: insufficient treasury funds", ErrPaymentRail)
	}

	nonce, err := client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce fetch failed: %v", ErrPaymentRail, err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas price fetch failed: %v", ErrPaymentRail, err)
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(recipient), wei, 21000, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainID), t.key)
	if err != nil {
		return nil, fmt.Errorf("%w: signing failed: %v", ErrPaymentRail, err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentRail, err)
	}
	log.Printf("⛓️  Transaction sent: %s (%d points → %s ETH)", signed.Hash().Hex(), points, EthAmountForPoints(points))

	receipt, err := bind.WaitMined(ctx, client, signed)
	if err != nil {
		return nil, fmt.Errorf("%w: confirmation failed: %v", ErrPaymentRail, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction reverted on chain", ErrPaymentRail)
	}

	return &TransferResult{
		TxHash:    signed.Hash().Hex(),
		AmountEth: EthAmountForPoints(points),
	}, nil
}

// Balance returns the treasury wallet's current wei balance.
func (t *SepoliaTreasury) Balance(ctx context.Context) (*big.Int, error) {
	client, err := t.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.BalanceAt(ctx, t.from, nil)
}

// Address returns the treasury wallet address.
func (t *SepoliaTreasury) Address() string {
	return t.from.Hex()
}
