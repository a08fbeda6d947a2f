package types

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// TxView is the read-only projection of a transaction fetched on every poll tick. A nil BlockNumber
// means the transaction has not been mined yet.
type TxView struct {
	Hash        common.Hash
	BlockNumber *uint64
}

// Mined returns true if the transaction has been included in a block.
func (v *TxView) Mined() bool {
	return v != nil && v.BlockNumber != nil
}

// TxRequest is a prepared contract call (or plain value transfer) that is handed to a wallet
// provider for signing and submission.
type TxRequest struct {
	To   *common.Address
	Data []byte
	Opts TxOpts
}

// Prerequisite is an off-chain step (gas estimate, signature request, backend call) that must succeed
// before a transaction is sent. It may adjust the request.
type Prerequisite func(ctx context.Context, req *TxRequest) error
