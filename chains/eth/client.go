package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sisu-network/lib/log"
)

const (
	RpcTimeOut = time.Second * 10
)

type NoHealthyClientErr struct {
	rpcs []string
}

func NewNoHealthyClientErr(rpcs []string) error {
	return &NoHealthyClientErr{rpcs: rpcs}
}

func (e *NoHealthyClientErr) Error() string {
	return fmt.Sprintf("No healthy client among rpcs %v", e.rpcs)
}

// EthClient is a wrapper around a set of ethclient.Client so that the submitter and the wallet can be
// mocked in tests.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

type defaultEthClient struct {
	rpcs    []string
	clients []*ethclient.Client
}

// NewEthClients dials every rpc and keeps the ones that answer a block number request.
func NewEthClients(rpcs []string) (EthClient, error) {
	c := &defaultEthClient{}

	for _, rpc := range rpcs {
		client, err := ethclient.Dial(rpc)
		if err != nil {
			log.Errorf("Failed to dial rpc %s, err = %v", rpc, err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), RpcTimeOut)
		_, err = client.BlockNumber(ctx)
		cancel()
		if err != nil {
			log.Errorf("Rpc %s is not healthy, err = %v", rpc, err)
			client.Close()
			continue
		}

		log.Info("Adding eth client at rpc: ", rpc)
		c.rpcs = append(c.rpcs, rpc)
		c.clients = append(c.clients, client)
	}

	if len(c.clients) == 0 {
		return nil, NewNoHealthyClientErr(rpcs)
	}

	return c, nil
}

// isNodeAnswer returns true if err is a definitive answer from the node rather than a transport
// failure. Other clients are not tried for such errors.
func isNodeAnswer(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}

func read[T any](c *defaultEthClient, f func(client *ethclient.Client) (T, error)) (T, error) {
	return executeWithClients(c.clients, func(client *ethclient.Client) (T, bool, error) {
		ret, err := f(client)
		return ret, isNodeAnswer(err), err
	})
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return read(c, func(client *ethclient.Client) (uint64, error) {
		return client.BlockNumber(ctx)
	})
}

func (c *defaultEthClient) ChainID(ctx context.Context) (*big.Int, error) {
	return read(c, func(client *ethclient.Client) (*big.Int, error) {
		return client.ChainID(ctx)
	})
}

func (c *defaultEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return read(c, func(client *ethclient.Client) (*ethtypes.Receipt, error) {
		return client.TransactionReceipt(ctx, txHash)
	})
}

func (c *defaultEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return read(c, func(client *ethclient.Client) (*big.Int, error) {
		return client.SuggestGasPrice(ctx)
	})
}

func (c *defaultEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return read(c, func(client *ethclient.Client) (uint64, error) {
		return client.EstimateGas(ctx, msg)
	})
}

func (c *defaultEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return read(c, func(client *ethclient.Client) (uint64, error) {
		return client.PendingNonceAt(ctx, account)
	})
}

func (c *defaultEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return read(c, func(client *ethclient.Client) ([]byte, error) {
		return client.CallContract(ctx, msg, blockNumber)
	})
}

// SendTransaction is sent to a single client. Broadcasting the same signed tx to another node after an
// ambiguous failure is left to the caller.
func (c *defaultEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	client := shuffle(c.clients)[0]
	return client.SendTransaction(ctx, tx)
}

func (c *defaultEthClient) Close() {
	for _, client := range c.clients {
		client.Close()
	}
}
