package chains

import (
	"context"

	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum/common"
)

type TxSubmitter interface {
	Submit(ctx context.Context, req *types.TxRequest, prereqs ...types.Prerequisite) (common.Hash, error)
}

var _ TxSubmitter = (*eth.Submitter)(nil)
