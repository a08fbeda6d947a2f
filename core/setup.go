package core

import (
	"math/big"

	"github.com/cargo-build/cargo-sdk-go/chains"
	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	"github.com/cargo-build/cargo-sdk-go/client"
	"github.com/cargo-build/cargo-sdk-go/config"
	"github.com/cargo-build/cargo-sdk-go/database"
	"github.com/cargo-build/cargo-sdk-go/network"
)

// NewDefaultCargo builds Cargo on top of the configured rpcs and marketplace backend. When cfg has a
// private key, a KeyWallet is set as the wallet provider.
func NewDefaultCargo(cfg *config.Cargo, db database.Database, watcher chains.TxWatcher) (*Cargo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ethClient, err := eth.NewEthClients(cfg.Rpcs)
	if err != nil {
		return nil, err
	}

	api := client.NewClient(cfg.RequestUrl(), network.NewHttp(), db)
	c, err := NewCargo(cfg, api, db, ethClient, watcher)
	if err != nil {
		return nil, err
	}

	if cfg.PrivateKey != "" {
		gas := eth.NewGasCalculator(ethClient, cfg.GasPriceUpdateInterval(), cfg.GasBumpPercent)
		wallet, err := eth.NewKeyWallet(cfg.PrivateKey, big.NewInt(cfg.ChainId), ethClient, gas)
		if err != nil {
			return nil, err
		}

		if err := c.SetWallet(wallet); err != nil {
			return nil, err
		}
	}

	return c, nil
}
