package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sisu-network/lib/log"
)

var ErrUnknownAccount = errors.New("account is not managed by this wallet")

// SendResult is what a wallet reports once the network knows the transaction. Receipt is only set by
// wallets that wait for the transaction to be mined.
type SendResult struct {
	Hash    common.Hash
	Receipt *ethtypes.Receipt
}

// Wallet is the wallet provider. Its operations complete through a callback, like an injected browser
// provider does.
type Wallet interface {
	Accounts() []common.Address
	SendTransaction(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult])
	Sign(ctx context.Context, account common.Address, message []byte, cb Callback[[]byte])
}

// KeyWallet is a Wallet backed by a single private key. Transactions are signed locally and sent
// through an EthClient.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainId *big.Int
	client  EthClient
	gas     *GasCalculator
}

func NewKeyWallet(hexKey string, chainId *big.Int, client EthClient, gas *GasCalculator) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainId: chainId,
		client:  client,
		gas:     gas,
	}, nil
}

func (w *KeyWallet) Accounts() []common.Address {
	return []common.Address{w.address}
}

func (w *KeyWallet) SendTransaction(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
	go func() {
		hash, err := w.send(ctx, req)
		if err != nil {
			cb(err, nil)
			return
		}

		cb(nil, &SendResult{Hash: hash})
	}()
}

func (w *KeyWallet) send(ctx context.Context, req *types.TxRequest) (common.Hash, error) {
	opts := req.Opts
	if opts.From != w.address {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownAccount, opts.From.Hex())
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		gasPrice = w.gas.GetGasPrice()
	}

	value := opts.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := opts.Gas
	if gasLimit == 0 {
		gasLimit, err = w.client.EstimateGas(ctx, ethereum.CallMsg{
			From:     w.address,
			To:       req.To,
			GasPrice: gasPrice,
			Value:    value,
			Data:     req.Data,
		})
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
		}
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       req.To,
		Value:    value,
		Data:     req.Data,
	})

	signedTx, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(w.chainId), w.key)
	if err != nil {
		return common.Hash{}, err
	}

	err = w.client.SendTransaction(ctx, signedTx)
	if err != nil && !strings.Contains(err.Error(), "already known") {
		return common.Hash{}, err
	}

	log.Verbosef("Sent tx %s from %s, nonce = %d", signedTx.Hash().Hex(), w.address.Hex(), nonce)

	return signedTx.Hash(), nil
}

// Sign produces an EIP-191 personal signature of message.
func (w *KeyWallet) Sign(ctx context.Context, account common.Address, message []byte, cb Callback[[]byte]) {
	if account != w.address {
		cb(fmt.Errorf("%w: %s", ErrUnknownAccount, account.Hex()), nil)
		return
	}

	sig, err := crypto.Sign(accounts.TextHash(message), w.key)
	if err != nil {
		cb(err, nil)
		return
	}

	sig[crypto.RecoveryIDOffset] += 27
	cb(nil, sig)
}

// RecoverSigner returns the account that produced a personal signature of message.
func RecoverSigner(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), normalized)
	if err != nil {
		return common.Address{}, err
	}

	return crypto.PubkeyToAddress(*pub), nil
}
