package eth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sisu-network/lib/log"
)

// Submitter sends a prepared transaction through the wallet and resolves as soon as the transaction
// hash is known. Confirmation is left to the tracker.
type Submitter struct {
	wallet Wallet
	// client is only used when checkReceipt is set.
	client       EthClient
	checkReceipt bool
	rpcTimeout   time.Duration
}

func NewSubmitter(wallet Wallet, client EthClient, checkReceipt bool, rpcTimeout time.Duration) *Submitter {
	if rpcTimeout <= 0 {
		rpcTimeout = RpcTimeOut
	}

	return &Submitter{
		wallet:       wallet,
		client:       client,
		checkReceipt: checkReceipt,
		rpcTimeout:   rpcTimeout,
	}
}

// Submit runs every prerequisite in order, validates the options and sends req. The returned error is
// always a *types.SubmitError.
func (s *Submitter) Submit(ctx context.Context, req *types.TxRequest, prereqs ...types.Prerequisite) (common.Hash, error) {
	for _, prereq := range prereqs {
		if err := prereq(ctx, req); err != nil {
			return common.Hash{}, types.NewSubmitError(types.KindPrerequisite, common.Hash{}, err)
		}
	}

	if err := req.Opts.Validate(); err != nil {
		return common.Hash{}, types.NewSubmitError(types.KindInvalidOptions, common.Hash{}, err)
	}

	result, err := Await(ctx, func(cb Callback[*SendResult]) {
		s.wallet.SendTransaction(ctx, req, cb)
	})
	if err != nil {
		return common.Hash{}, types.NewSubmitError(types.KindProvider, common.Hash{}, err)
	}

	if result == nil {
		return common.Hash{}, types.NewSubmitError(types.KindProvider, common.Hash{},
			fmt.Errorf("wallet returned no transaction hash"))
	}

	hash := result.Hash
	receipt := result.Receipt
	if receipt == nil && s.checkReceipt && s.client != nil {
		receipt = s.fetchReceipt(ctx, hash)
	}

	if receipt != nil && receipt.Status == ethtypes.ReceiptStatusFailed {
		return hash, types.NewSubmitError(types.KindReverted, hash, types.ErrReverted)
	}

	return hash, nil
}

// fetchReceipt returns nil if the receipt is not available yet.
func (s *Submitter) fetchReceipt(ctx context.Context, hash common.Hash) *ethtypes.Receipt {
	ctx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	defer cancel()

	receipt, err := s.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if !errors.Is(err, ethereum.NotFound) {
			log.Errorf("Failed to get receipt for tx %s, err = %v", hash.Hex(), err)
		}
		return nil
	}

	return receipt
}

// EstimateGasPrerequisite fills in the gas limit of a request that does not have one.
func EstimateGasPrerequisite(gas *GasCalculator) types.Prerequisite {
	return func(ctx context.Context, req *types.TxRequest) error {
		if req.Opts.Gas != 0 {
			return nil
		}

		limit, err := gas.EstimateGas(ctx, ethereum.CallMsg{
			From:     req.Opts.From,
			To:       req.To,
			GasPrice: req.Opts.GasPrice,
			Value:    req.Opts.Value,
			Data:     req.Data,
		})
		if err != nil {
			return fmt.Errorf("failed to estimate gas: %w", err)
		}

		req.Opts.Gas = limit
		return nil
	}
}
