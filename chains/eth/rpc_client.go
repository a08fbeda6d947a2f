package eth

import (
	"context"
	"fmt"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ybbus/jsonrpc/v3"
)

// RpcClient supplies the two primitives used by the confirmation tracker.
type RpcClient interface {
	// GetTransaction returns nil (and no error) if the node does not know the transaction.
	GetTransaction(ctx context.Context, hash common.Hash) (*types.TxView, error)
	LatestBlock(ctx context.Context) (uint64, error)
}

type rpcTransaction struct {
	Hash        common.Hash     `json:"hash"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
}

type rpcBlockHeader struct {
	Number *hexutil.Uint64 `json:"number"`
}

type defaultRpcClient struct {
	clients []jsonrpc.RPCClient
}

func NewRpcClient(rpcs []string) RpcClient {
	clients := make([]jsonrpc.RPCClient, 0, len(rpcs))
	for _, rpc := range rpcs {
		clients = append(clients, jsonrpc.NewClient(rpc))
	}

	return &defaultRpcClient{clients: clients}
}

func call[T any](c *defaultRpcClient, ctx context.Context, method string, params ...interface{}) (*T, error) {
	return executeWithClients(c.clients, func(client jsonrpc.RPCClient) (*T, bool, error) {
		res, err := client.Call(ctx, method, params...)
		if err != nil {
			return nil, false, err
		}

		if res.Error != nil {
			// The node answered, other nodes would very likely answer the same.
			return nil, true, res.Error
		}

		var ret *T
		if err := res.GetObject(&ret); err != nil {
			return nil, true, err
		}

		return ret, true, nil
	})
}

func (c *defaultRpcClient) GetTransaction(ctx context.Context, hash common.Hash) (*types.TxView, error) {
	tx, err := call[rpcTransaction](c, ctx, "eth_getTransactionByHash", hash.Hex())
	if err != nil {
		return nil, err
	}

	if tx == nil {
		return nil, nil
	}

	view := &types.TxView{Hash: hash}
	if tx.BlockNumber != nil {
		bn := uint64(*tx.BlockNumber)
		view.BlockNumber = &bn
	}

	return view, nil
}

func (c *defaultRpcClient) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := call[rpcBlockHeader](c, ctx, "eth_getBlockByNumber", "latest", false)
	if err != nil {
		return 0, err
	}

	if header == nil || header.Number == nil {
		return 0, fmt.Errorf("latest block is not available")
	}

	return uint64(*header.Number), nil
}
