package eth

import (
	"context"
	"math/big"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type MockEthClient struct {
	BlockNumberFunc        func(ctx context.Context) (uint64, error)
	ChainIDFunc            func(ctx context.Context) (*big.Int, error)
	TransactionReceiptFunc func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	SuggestGasPriceFunc    func(ctx context.Context) (*big.Int, error)
	EstimateGasFunc        func(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAtFunc     func(ctx context.Context, account common.Address) (uint64, error)
	SendTransactionFunc    func(ctx context.Context, tx *ethtypes.Transaction) error
	CallContractFunc       func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

func (c *MockEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	if c.BlockNumberFunc != nil {
		return c.BlockNumberFunc(ctx)
	}

	return 0, nil
}

func (c *MockEthClient) ChainID(ctx context.Context) (*big.Int, error) {
	if c.ChainIDFunc != nil {
		return c.ChainIDFunc(ctx)
	}

	return big.NewInt(1), nil
}

func (c *MockEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	if c.TransactionReceiptFunc != nil {
		return c.TransactionReceiptFunc(ctx, txHash)
	}

	return nil, ethereum.NotFound
}

func (c *MockEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if c.SuggestGasPriceFunc != nil {
		return c.SuggestGasPriceFunc(ctx)
	}

	return big.NewInt(DefaultGasPrice), nil
}

func (c *MockEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if c.EstimateGasFunc != nil {
		return c.EstimateGasFunc(ctx, msg)
	}

	return 21_000, nil
}

func (c *MockEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if c.PendingNonceAtFunc != nil {
		return c.PendingNonceAtFunc(ctx, account)
	}

	return 0, nil
}

func (c *MockEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if c.SendTransactionFunc != nil {
		return c.SendTransactionFunc(ctx, tx)
	}

	return nil
}

func (c *MockEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if c.CallContractFunc != nil {
		return c.CallContractFunc(ctx, msg, blockNumber)
	}

	return nil, nil
}

func (c *MockEthClient) Close() {}

type MockRpcClient struct {
	GetTransactionFunc func(ctx context.Context, hash common.Hash) (*types.TxView, error)
	LatestBlockFunc    func(ctx context.Context) (uint64, error)
}

func (c *MockRpcClient) GetTransaction(ctx context.Context, hash common.Hash) (*types.TxView, error) {
	if c.GetTransactionFunc != nil {
		return c.GetTransactionFunc(ctx, hash)
	}

	return nil, nil
}

func (c *MockRpcClient) LatestBlock(ctx context.Context) (uint64, error) {
	if c.LatestBlockFunc != nil {
		return c.LatestBlockFunc(ctx)
	}

	return 0, nil
}

type MockWallet struct {
	AccountsFunc        func() []common.Address
	SendTransactionFunc func(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult])
	SignFunc            func(ctx context.Context, account common.Address, message []byte, cb Callback[[]byte])
}

func (w *MockWallet) Accounts() []common.Address {
	if w.AccountsFunc != nil {
		return w.AccountsFunc()
	}

	return nil
}

func (w *MockWallet) SendTransaction(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
	if w.SendTransactionFunc != nil {
		w.SendTransactionFunc(ctx, req, cb)
		return
	}

	cb(nil, &SendResult{Hash: common.BytesToHash(req.Data)})
}

func (w *MockWallet) Sign(ctx context.Context, account common.Address, message []byte, cb Callback[[]byte]) {
	if w.SignFunc != nil {
		w.SignFunc(ctx, account, message, cb)
		return
	}

	cb(nil, []byte{})
}
