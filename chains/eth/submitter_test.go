package eth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var testFrom = common.HexToAddress("0x2d6a4b5c1a3c1f0e5d5f2b4d87a1f1b3a1c2d3e4")

func newTestRequest() *types.TxRequest {
	to := common.HexToAddress("0x1")
	return &types.TxRequest{
		To:   &to,
		Data: []byte{0xaa},
		Opts: types.TxOpts{From: testFrom},
	}
}

func TestSubmitter_ResolvesWithHash(t *testing.T) {
	t.Parallel()

	hash := common.HexToHash("0xabc")
	wallet := &MockWallet{
		SendTransactionFunc: func(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
			go cb(nil, &SendResult{Hash: hash})
		},
	}

	s := NewSubmitter(wallet, nil, false, 0)
	ret, err := s.Submit(context.Background(), newTestRequest())
	require.NoError(t, err)
	require.Equal(t, hash, ret)
}

func TestSubmitter_Classification(t *testing.T) {
	t.Parallel()

	hash := common.HexToHash("0xabc")
	reverted := &MockWallet{
		SendTransactionFunc: func(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
			cb(nil, &SendResult{
				Hash:    hash,
				Receipt: &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed},
			})
		},
	}
	rejected := &MockWallet{
		SendTransactionFunc: func(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
			cb(fmt.Errorf("User denied transaction signature"), nil)
		},
	}

	ret, revertErr := NewSubmitter(reverted, nil, false, 0).Submit(context.Background(), newTestRequest())
	require.Error(t, revertErr)
	require.Equal(t, hash, ret)

	_, providerErr := NewSubmitter(rejected, nil, false, 0).Submit(context.Background(), newTestRequest())
	require.Error(t, providerErr)

	require.True(t, types.IsReverted(revertErr))
	require.ErrorIs(t, revertErr, types.ErrReverted)
	require.False(t, types.IsReverted(providerErr))
	require.False(t, errors.Is(providerErr, types.ErrReverted))

	var submitErr *types.SubmitError
	require.True(t, errors.As(revertErr, &submitErr))
	require.Equal(t, types.KindReverted, submitErr.Kind)
	require.Equal(t, hash, submitErr.Hash)

	require.True(t, errors.As(providerErr, &submitErr))
	require.Equal(t, types.KindProvider, submitErr.Kind)
}

func TestSubmitter_CheckReceipt(t *testing.T) {
	t.Parallel()

	hash := common.HexToHash("0xabc")
	wallet := &MockWallet{
		SendTransactionFunc: func(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
			cb(nil, &SendResult{Hash: hash})
		},
	}

	t.Run("reverted", func(t *testing.T) {
		client := &MockEthClient{
			TransactionReceiptFunc: func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
				return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed}, nil
			},
		}

		_, err := NewSubmitter(wallet, client, true, 0).Submit(context.Background(), newTestRequest())
		require.True(t, types.IsReverted(err))
	})

	t.Run("success", func(t *testing.T) {
		client := &MockEthClient{
			TransactionReceiptFunc: func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
				return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}, nil
			},
		}

		ret, err := NewSubmitter(wallet, client, true, 0).Submit(context.Background(), newTestRequest())
		require.NoError(t, err)
		require.Equal(t, hash, ret)
	})

	t.Run("not_mined_yet", func(t *testing.T) {
		client := &MockEthClient{
			TransactionReceiptFunc: func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
				return nil, ethereum.NotFound
			},
		}

		ret, err := NewSubmitter(wallet, client, true, 0).Submit(context.Background(), newTestRequest())
		require.NoError(t, err)
		require.Equal(t, hash, ret)
	})
}

func TestSubmitter_Prerequisites(t *testing.T) {
	t.Parallel()

	sent := false
	wallet := &MockWallet{
		SendTransactionFunc: func(ctx context.Context, req *types.TxRequest, cb Callback[*SendResult]) {
			sent = true
			cb(nil, &SendResult{})
		},
	}

	order := make([]string, 0)
	first := func(ctx context.Context, req *types.TxRequest) error {
		order = append(order, "signature")
		return nil
	}
	failing := func(ctx context.Context, req *types.TxRequest) error {
		order = append(order, "args")
		return fmt.Errorf("backend unavailable")
	}
	never := func(ctx context.Context, req *types.TxRequest) error {
		order = append(order, "never")
		return nil
	}

	_, err := NewSubmitter(wallet, nil, false, 0).Submit(context.Background(), newTestRequest(), first, failing, never)

	var submitErr *types.SubmitError
	require.True(t, errors.As(err, &submitErr))
	require.Equal(t, types.KindPrerequisite, submitErr.Kind)
	require.Equal(t, []string{"signature", "args"}, order)
	require.False(t, sent)
}

func TestSubmitter_InvalidOptions(t *testing.T) {
	t.Parallel()

	wallet := &MockWallet{}
	req := newTestRequest()
	req.Opts.From = common.Address{}

	_, err := NewSubmitter(wallet, nil, false, 0).Submit(context.Background(), req)

	var submitErr *types.SubmitError
	require.True(t, errors.As(err, &submitErr))
	require.Equal(t, types.KindInvalidOptions, submitErr.Kind)
	require.ErrorIs(t, err, types.ErrMissingFrom)
}

func TestEstimateGasPrerequisite(t *testing.T) {
	t.Parallel()

	client := &MockEthClient{
		EstimateGasFunc: func(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
			require.Equal(t, testFrom, msg.From)
			return 50_000, nil
		},
	}
	gas := NewGasCalculator(client, 0, DefaultGasBumpPercent)

	req := newTestRequest()
	require.NoError(t, EstimateGasPrerequisite(gas)(context.Background(), req))
	require.Equal(t, uint64(56_000), req.Opts.Gas)

	// An explicit gas limit is kept.
	req.Opts.Gas = 30_000
	require.NoError(t, EstimateGasPrerequisite(gas)(context.Background(), req))
	require.Equal(t, uint64(30_000), req.Opts.Gas)
}
