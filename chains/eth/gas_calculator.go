package eth

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/sisu-network/lib/log"
)

const (
	DefaultGasPrice       = int64(20_000_000_000) // 20 gwei
	DefaultGasBumpPercent = 12
)

var (
	GasPriceUpdateInterval = time.Second * 60
)

// GasCalculator caches the node's suggested gas price and turns gas estimates into gas limits with a
// safety margin.
type GasCalculator struct {
	client                 EthClient
	gasPrice               *big.Int
	gasPriceUpdateInterval time.Duration
	bumpPercent            int

	lastUpdateGasPrice time.Time
	lock               *sync.RWMutex
}

func NewGasCalculator(client EthClient, gasPriceUpdateInterval time.Duration, bumpPercent int) *GasCalculator {
	if gasPriceUpdateInterval <= 0 {
		gasPriceUpdateInterval = GasPriceUpdateInterval
	}

	return &GasCalculator{
		client:                 client,
		gasPrice:               big.NewInt(DefaultGasPrice),
		gasPriceUpdateInterval: gasPriceUpdateInterval,
		bumpPercent:            bumpPercent,
		lock:                   &sync.RWMutex{},
	}
}

func (g *GasCalculator) Start() {
	g.updateGasPrice()
}

// GetGasPrice returns estimated gas price.
func (g *GasCalculator) GetGasPrice() *big.Int {
	g.lock.RLock()
	lastUpdate := g.lastUpdateGasPrice
	g.lock.RUnlock()

	if time.Now().After(lastUpdate.Add(g.gasPriceUpdateInterval)) {
		g.updateGasPrice()
	}

	g.lock.RLock()
	defer g.lock.RUnlock()

	return new(big.Int).Set(g.gasPrice)
}

func (g *GasCalculator) updateGasPrice() {
	ctx, cancel := context.WithTimeout(context.Background(), RpcTimeOut)
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	cancel()

	if err != nil || gasPrice == nil {
		log.Errorf("Failed to get gas price, err = %v", err)
		return
	}

	g.lock.Lock()
	g.gasPrice = gasPrice
	g.lastUpdateGasPrice = time.Now()
	g.lock.Unlock()
}

// EstimateGas asks the node for the gas used by msg and adds bumpPercent on top of it.
func (g *GasCalculator) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	gas, err := g.client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, err
	}

	return Bump(gas, g.bumpPercent), nil
}

// Bump returns gas increased by percent, rounded down.
func Bump(gas uint64, percent int) uint64 {
	if percent <= 0 {
		return gas
	}

	return gas + gas*uint64(percent)/100
}
